package handlers

import (
	"net/http"

	"faceattend/internal/capture"
	"faceattend/internal/logger"
	"faceattend/internal/models"
)

// Feed is the agent's view of the attendance feed poller.
type Feed interface {
	Records() []models.AttendanceRecord
	Refresh()
}

// SessionStatus exposes the capture session state.
type SessionStatus interface {
	Status() capture.Status
}

// TodayAttendanceHandler returns the poller's snapshot of today's records,
// newest first.
func TodayAttendanceHandler(feed Feed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records := feed.Records()
		if records == nil {
			records = []models.AttendanceRecord{}
		}
		respondJSON(w, map[string][]models.AttendanceRecord{"attendance": records})
	}
}

// RefreshAttendanceHandler triggers an out-of-band feed fetch.
func RefreshAttendanceHandler(feed Feed, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		feed.Refresh()
		logger.Info("Manual attendance refresh")
		respondJSON(w, map[string]string{"message": "refreshed"})
	}
}

// StatusHandler reports the capture session state.
func StatusHandler(session SessionStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, session.Status())
	}
}
