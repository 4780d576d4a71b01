package routes

import (
	"net/http"

	"faceattend/internal/capture"
	"faceattend/internal/config"
	"faceattend/internal/feed"
	"faceattend/internal/handlers"
	"faceattend/internal/logger"
	"faceattend/internal/repository"
	"faceattend/internal/ws"
)

// Server registers the attendance backend API.
func Server(finder handlers.FaceFinder, attendance repository.AttendanceRepository, employees repository.EmployeeRepository, hub *ws.Hub, cfg *config.Config, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/mark-attendance", handlers.MarkAttendanceHandler(finder, attendance, employees, hub, cfg, logger))
	mux.HandleFunc("/api/get-attendance", handlers.GetAttendanceHandler(attendance, logger))
	mux.HandleFunc("/api/add-user", handlers.AddUserHandler(employees, cfg, logger))
	mux.HandleFunc("/api/ws", handlers.LiveAttendanceHandler(hub, logger))

	return mux
}

// Agent registers the capture agent's local status API.
func Agent(session *capture.Session, poller *feed.Poller, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/attendance/today", handlers.TodayAttendanceHandler(poller))
	mux.HandleFunc("/api/attendance/refresh", handlers.RefreshAttendanceHandler(poller, logger))
	mux.HandleFunc("/api/status", handlers.StatusHandler(session))

	return mux
}
