package handlers

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"faceattend/internal/config"
	"faceattend/internal/logger"
	"faceattend/internal/models"
	"faceattend/internal/repository"
)

var timeNow = time.Now

// FaceFinder locates faces in a JPEG frame.
type FaceFinder interface {
	DetectFaces(frame []byte) ([]image.Rectangle, error)
	DrawBoxes(frame []byte, boxes []image.Rectangle) ([]byte, error)
}

// Broadcaster pushes newly recorded entries to live dashboard clients.
type Broadcaster interface {
	Broadcast(record models.AttendanceRecord)
}

// MarkAttendanceHandler ingests a frame upload, verifies face presence, and
// records a check-in or check-out according to the office time windows.
func MarkAttendanceHandler(finder FaceFinder, attendance repository.AttendanceRepository, employees repository.EmployeeRepository, hub Broadcaster, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	officeStart := parseClock(cfg.OfficeStart, 9*60, logger)
	onTimeLimit := parseClock(cfg.OnTimeLimit, 9*60+15, logger)
	lastCheckIn := parseClock(cfg.LastCheckIn, 9*60+30, logger)
	officeEnd := parseClock(cfg.OfficeEnd, 17*60, logger)

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		file, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "Missing file field", http.StatusBadRequest)
			return
		}
		defer file.Close()

		frame, err := io.ReadAll(file)
		if err != nil {
			http.Error(w, "Error reading upload", http.StatusBadRequest)
			return
		}

		faces, err := finder.DetectFaces(frame)
		if err != nil {
			logger.Warning("Could not run detection on upload: %v", err)
			http.Error(w, "Invalid image format", http.StatusBadRequest)
			return
		}
		if len(faces) == 0 {
			respondJSON(w, map[string]string{"message": "No face recognized"})
			return
		}

		empID := r.FormValue("emp_id")
		if empID == "" {
			respondJSON(w, map[string]string{"message": "Unknown employee"})
			return
		}
		emp, err := employees.GetByEmpID(empID)
		if err != nil {
			logger.Error("Employee lookup failed: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if emp == nil {
			respondJSON(w, map[string]string{"message": "Unknown employee"})
			return
		}

		now := timeNow()
		minute := now.Hour()*60 + now.Minute()

		if minute < officeStart {
			respondJSON(w, map[string]string{
				"message": fmt.Sprintf("Too early for attendance. Office starts at %s", cfg.OfficeStart),
			})
			return
		}

		last, err := attendance.GetLastByEmployee(empID)
		if err != nil {
			logger.Error("Attendance lookup failed: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		var status, timingStatus string
		if last == nil || last.Status == models.StatusCheckOut {
			if minute > lastCheckIn {
				respondJSON(w, map[string]string{
					"message": fmt.Sprintf("Check-in not allowed after %s", cfg.LastCheckIn),
				})
				return
			}
			status = models.StatusCheckIn
			if minute <= onTimeLimit {
				timingStatus = models.TimingOnTime
			} else {
				timingStatus = models.TimingLate
			}
		} else {
			if minute < officeEnd {
				respondJSON(w, map[string]string{
					"message": fmt.Sprintf("Early check-out not allowed. Office ends at %s", cfg.OfficeEnd),
				})
				return
			}
			status = models.StatusCheckOut
			timingStatus = models.TimingNA
		}

		record := models.AttendanceRecord{
			EmployeeID:   empID,
			EmployeeName: emp.Name,
			Timestamp:    now.Format(models.TimestampLayout),
			Status:       status,
			TimingStatus: timingStatus,
		}
		if _, err := attendance.Insert(&record); err != nil {
			logger.Error("Failed to record attendance: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if cfg.KeepFrames {
			saveFrame(finder, frame, faces, empID, now, cfg.FrameDirectory, logger)
		}

		if hub != nil {
			hub.Broadcast(record)
		}

		logger.Info("%s recorded for %s (%s)", status, emp.Name, empID)

		respondJSON(w, map[string]string{
			"message":       fmt.Sprintf("%s recorded for %s (%s)", status, emp.Name, empID),
			"timestamp":     record.Timestamp,
			"status":        status,
			"timing_status": timingStatus,
		})
	}
}

// GetAttendanceHandler returns every attendance record.
func GetAttendanceHandler(attendance repository.AttendanceRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := attendance.GetAll()
		if err != nil {
			logger.Error("Failed to load attendance: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []models.AttendanceRecord{}
		}

		respondJSON(w, map[string][]models.AttendanceRecord{"attendance": records})
	}
}

// AddUserHandler registers a new employee with a reference photo.
func AddUserHandler(employees repository.EmployeeRepository, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		empID := r.FormValue("emp_id")
		name := r.FormValue("name")
		if empID == "" || name == "" {
			http.Error(w, "emp_id and name are required", http.StatusBadRequest)
			return
		}
		department := r.FormValue("department")
		if department == "" {
			department = "Not Specified"
		}

		photoPath := ""
		photo, _, err := r.FormFile("photo")
		if err == nil {
			defer photo.Close()

			if err := os.MkdirAll(cfg.PhotoDirectory, 0755); err != nil {
				logger.Error("Failed to create photo directory: %v", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			photoPath = filepath.Join(cfg.PhotoDirectory, empID+".jpg")

			data, err := io.ReadAll(photo)
			if err != nil {
				http.Error(w, "Error reading photo", http.StatusBadRequest)
				return
			}
			if err := os.WriteFile(photoPath, data, 0644); err != nil {
				logger.Error("Failed to save photo: %v", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
		}

		emp := models.Employee{
			EmpID:      empID,
			Name:       name,
			Role:       r.FormValue("role"),
			Department: department,
			PhotoPath:  photoPath,
		}
		if _, err := employees.Insert(&emp); err != nil {
			logger.Error("Failed to insert employee: %v", err)
			http.Error(w, "Could not add user", http.StatusConflict)
			return
		}

		logger.Info("User added: %s (%s)", name, empID)
		respondJSON(w, map[string]string{"message": "User added successfully", "file_path": photoPath})
	}
}

// saveFrame writes the annotated frame that produced a record to disk.
func saveFrame(finder FaceFinder, frame []byte, faces []image.Rectangle, empID string, now time.Time, dir string, logger *logger.Logger) {
	annotated, err := finder.DrawBoxes(frame, faces)
	if err != nil {
		logger.Error("Failed to annotate frame: %v", err)
		annotated = frame
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Error("Failed to create frame directory: %v", err)
		return
	}

	filename := fmt.Sprintf("%s_%s.jpg", now.Format("2006-01-02_15-04-05"), empID)
	if err := os.WriteFile(filepath.Join(dir, filename), annotated, 0644); err != nil {
		logger.Error("Failed to save frame %s: %v", filename, err)
	}
}

// parseClock converts an "HH:MM" window boundary to minutes since midnight.
func parseClock(value string, fallback int, logger *logger.Logger) int {
	t, err := time.Parse("15:04", value)
	if err != nil {
		logger.Warning("Invalid time window %q, using default", value)
		return fallback
	}
	return t.Hour()*60 + t.Minute()
}

func respondJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
