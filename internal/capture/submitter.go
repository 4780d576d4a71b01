package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"faceattend/internal/logger"
)

// Submitter posts detected frames to the attendance backend as a multipart
// upload. Failures are logged and never propagate to the sampling loop.
type Submitter struct {
	url        string
	employeeID string
	cooldown   time.Duration
	client     *http.Client
	logger     *logger.Logger

	mu         sync.Mutex
	lastSubmit time.Time
	now        func() time.Time
}

// NewSubmitter creates a submitter for the backend's mark-attendance
// endpoint. Submissions within cooldown of the last successful one are
// suppressed so a continuous presence does not produce repeated writes.
func NewSubmitter(serverURL, employeeID string, cooldown time.Duration, logger *logger.Logger) *Submitter {
	return &Submitter{
		url:        strings.TrimRight(serverURL, "/") + "/api/mark-attendance",
		employeeID: employeeID,
		cooldown:   cooldown,
		client:     &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
		now:        time.Now,
	}
}

// Submit uploads one JPEG frame as form field "file" (filename image.jpg) and
// logs the backend's message field.
func (s *Submitter) Submit(ctx context.Context, frame []byte) {
	s.mu.Lock()
	if s.cooldown > 0 && !s.lastSubmit.IsZero() && s.now().Sub(s.lastSubmit) < s.cooldown {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		s.logger.Error("Failed to build attendance upload: %v", err)
		return
	}
	if _, err := part.Write(frame); err != nil {
		s.logger.Error("Failed to build attendance upload: %v", err)
		return
	}
	if s.employeeID != "" {
		writer.WriteField("emp_id", s.employeeID)
	}
	if err := writer.Close(); err != nil {
		s.logger.Error("Failed to build attendance upload: %v", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, body)
	if err != nil {
		s.logger.Error("Failed to build attendance request: %v", err)
		return
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("Failed to submit frame: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("Attendance endpoint returned status %d", resp.StatusCode)
		return
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		s.logger.Error("Failed to decode attendance response: %v", err)
		return
	}

	s.mu.Lock()
	s.lastSubmit = s.now()
	s.mu.Unlock()

	s.logger.Info("Attendance response: %s", payload.Message)
}
