package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"faceattend/internal/config"
	"faceattend/internal/logger"
	"faceattend/internal/models"
)

type stubFinder struct {
	faces int
	err   error
}

func (f stubFinder) DetectFaces(frame []byte) ([]image.Rectangle, error) {
	if f.err != nil {
		return nil, f.err
	}
	boxes := make([]image.Rectangle, f.faces)
	for i := range boxes {
		boxes[i] = image.Rect(0, 0, 10, 10)
	}
	return boxes, nil
}

func (f stubFinder) DrawBoxes(frame []byte, boxes []image.Rectangle) ([]byte, error) {
	return frame, nil
}

type memAttendance struct {
	records []models.AttendanceRecord
}

func (m *memAttendance) Insert(rec *models.AttendanceRecord) (int64, error) {
	id := int64(len(m.records) + 1)
	rec.ID = strconv.FormatInt(id, 10)
	m.records = append(m.records, *rec)
	return id, nil
}

func (m *memAttendance) GetAll() ([]models.AttendanceRecord, error) {
	return m.records, nil
}

func (m *memAttendance) GetByDate(date string) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	for _, rec := range m.records {
		if rec.Date() == date {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memAttendance) GetLastByEmployee(empID string) (*models.AttendanceRecord, error) {
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].EmployeeID == empID {
			rec := m.records[i]
			return &rec, nil
		}
	}
	return nil, nil
}

type memEmployees struct {
	employees map[string]models.Employee
}

func (m *memEmployees) Insert(emp *models.Employee) (int64, error) {
	if m.employees == nil {
		m.employees = make(map[string]models.Employee)
	}
	m.employees[emp.EmpID] = *emp
	return int64(len(m.employees)), nil
}

func (m *memEmployees) GetByEmpID(empID string) (*models.Employee, error) {
	emp, ok := m.employees[empID]
	if !ok {
		return nil, nil
	}
	return &emp, nil
}

func (m *memEmployees) GetAll() ([]models.Employee, error) {
	var out []models.Employee
	for _, emp := range m.employees {
		out = append(out, emp)
	}
	return out, nil
}

type recordingHub struct {
	broadcasts []models.AttendanceRecord
}

func (h *recordingHub) Broadcast(record models.AttendanceRecord) {
	h.broadcasts = append(h.broadcasts, record)
}

func testConfig() *config.Config {
	return &config.Config{
		OfficeStart: "09:00",
		OnTimeLimit: "09:15",
		LastCheckIn: "09:30",
		OfficeEnd:   "17:00",
		KeepFrames:  false,
	}
}

func knownEmployees() *memEmployees {
	return &memEmployees{employees: map[string]models.Employee{
		"EMP001": {EmpID: "EMP001", Name: "Alice"},
	}}
}

func markRequest(t *testing.T, empID string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	part.Write([]byte("jpeg-bytes"))
	if empID != "" {
		writer.WriteField("emp_id", empID)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/mark-attendance", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func atClock(t *testing.T, hour, minute int) func() {
	t.Helper()

	saved := timeNow
	timeNow = func() time.Time {
		return time.Date(2024, 3, 2, hour, minute, 0, 0, time.Local)
	}
	return func() { timeNow = saved }
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var payload map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	return payload["message"]
}

func TestMarkAttendance_NoFaceRecognized(t *testing.T) {
	repo := &memAttendance{}
	handler := MarkAttendanceHandler(stubFinder{faces: 0}, repo, knownEmployees(), nil, testConfig(), logger.New(t.TempDir()))

	defer atClock(t, 9, 10)()
	w := httptest.NewRecorder()
	handler(w, markRequest(t, "EMP001"))

	if msg := decodeMessage(t, w); msg != "No face recognized" {
		t.Errorf("message = %q", msg)
	}
	if len(repo.records) != 0 {
		t.Error("No record should be written without a face")
	}
}

func TestMarkAttendance_DetectionErrorIsBadRequest(t *testing.T) {
	handler := MarkAttendanceHandler(stubFinder{err: errors.New("bad image")}, &memAttendance{}, knownEmployees(), nil, testConfig(), logger.New(t.TempDir()))

	w := httptest.NewRecorder()
	handler(w, markRequest(t, "EMP001"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", w.Code)
	}
}

func TestMarkAttendance_UnknownEmployee(t *testing.T) {
	repo := &memAttendance{}
	handler := MarkAttendanceHandler(stubFinder{faces: 1}, repo, knownEmployees(), nil, testConfig(), logger.New(t.TempDir()))

	defer atClock(t, 9, 10)()

	for _, empID := range []string{"", "EMP999"} {
		w := httptest.NewRecorder()
		handler(w, markRequest(t, empID))
		if msg := decodeMessage(t, w); msg != "Unknown employee" {
			t.Errorf("emp_id %q: message = %q", empID, msg)
		}
	}
	if len(repo.records) != 0 {
		t.Error("No record should be written for unknown employees")
	}
}

func TestMarkAttendance_TooEarly(t *testing.T) {
	handler := MarkAttendanceHandler(stubFinder{faces: 1}, &memAttendance{}, knownEmployees(), nil, testConfig(), logger.New(t.TempDir()))

	defer atClock(t, 8, 30)()
	w := httptest.NewRecorder()
	handler(w, markRequest(t, "EMP001"))

	if msg := decodeMessage(t, w); msg != "Too early for attendance. Office starts at 09:00" {
		t.Errorf("message = %q", msg)
	}
}

func TestMarkAttendance_CheckInOnTime(t *testing.T) {
	repo := &memAttendance{}
	hub := &recordingHub{}
	handler := MarkAttendanceHandler(stubFinder{faces: 1}, repo, knownEmployees(), hub, testConfig(), logger.New(t.TempDir()))

	defer atClock(t, 9, 10)()
	w := httptest.NewRecorder()
	handler(w, markRequest(t, "EMP001"))

	if len(repo.records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(repo.records))
	}
	rec := repo.records[0]
	if rec.Status != models.StatusCheckIn || rec.TimingStatus != models.TimingOnTime {
		t.Errorf("Unexpected record: %+v", rec)
	}
	if rec.Timestamp != "2024-03-02 09:10:00" {
		t.Errorf("timestamp = %q", rec.Timestamp)
	}
	if len(hub.broadcasts) != 1 {
		t.Errorf("Expected 1 broadcast, got %d", len(hub.broadcasts))
	}
	if msg := decodeMessage(t, w); msg != "Check-in recorded for Alice (EMP001)" {
		t.Errorf("message = %q", msg)
	}
}

func TestMarkAttendance_CheckInLate(t *testing.T) {
	repo := &memAttendance{}
	handler := MarkAttendanceHandler(stubFinder{faces: 1}, repo, knownEmployees(), nil, testConfig(), logger.New(t.TempDir()))

	defer atClock(t, 9, 20)()
	w := httptest.NewRecorder()
	handler(w, markRequest(t, "EMP001"))

	if len(repo.records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(repo.records))
	}
	if repo.records[0].TimingStatus != models.TimingLate {
		t.Errorf("timing = %q, expected Late", repo.records[0].TimingStatus)
	}
	if msg := decodeMessage(t, w); msg != "Check-in recorded for Alice (EMP001)" {
		t.Errorf("message = %q", msg)
	}
}

func TestMarkAttendance_CheckInWindowClosed(t *testing.T) {
	repo := &memAttendance{}
	handler := MarkAttendanceHandler(stubFinder{faces: 1}, repo, knownEmployees(), nil, testConfig(), logger.New(t.TempDir()))

	defer atClock(t, 10, 0)()
	w := httptest.NewRecorder()
	handler(w, markRequest(t, "EMP001"))

	if msg := decodeMessage(t, w); msg != "Check-in not allowed after 09:30" {
		t.Errorf("message = %q", msg)
	}
	if len(repo.records) != 0 {
		t.Error("No record should be written after the check-in window")
	}
}

func TestMarkAttendance_EarlyCheckOutRejected(t *testing.T) {
	repo := &memAttendance{}
	repo.Insert(&models.AttendanceRecord{
		EmployeeID: "EMP001", EmployeeName: "Alice",
		Timestamp: "2024-03-02 09:10:00", Status: models.StatusCheckIn,
	})
	handler := MarkAttendanceHandler(stubFinder{faces: 1}, repo, knownEmployees(), nil, testConfig(), logger.New(t.TempDir()))

	defer atClock(t, 16, 0)()
	w := httptest.NewRecorder()
	handler(w, markRequest(t, "EMP001"))

	if msg := decodeMessage(t, w); msg != "Early check-out not allowed. Office ends at 17:00" {
		t.Errorf("message = %q", msg)
	}
	if len(repo.records) != 1 {
		t.Error("No check-out should be written before office end")
	}
}

func TestMarkAttendance_CheckOutAfterOfficeEnd(t *testing.T) {
	repo := &memAttendance{}
	repo.Insert(&models.AttendanceRecord{
		EmployeeID: "EMP001", EmployeeName: "Alice",
		Timestamp: "2024-03-02 09:10:00", Status: models.StatusCheckIn,
	})
	handler := MarkAttendanceHandler(stubFinder{faces: 1}, repo, knownEmployees(), nil, testConfig(), logger.New(t.TempDir()))

	defer atClock(t, 17, 30)()
	w := httptest.NewRecorder()
	handler(w, markRequest(t, "EMP001"))

	if len(repo.records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(repo.records))
	}
	rec := repo.records[1]
	if rec.Status != models.StatusCheckOut || rec.TimingStatus != models.TimingNA {
		t.Errorf("Unexpected record: %+v", rec)
	}
	if msg := decodeMessage(t, w); msg != "Check-out recorded for Alice (EMP001)" {
		t.Errorf("message = %q", msg)
	}
}

func TestGetAttendance_ShapeAndEmpty(t *testing.T) {
	handler := GetAttendanceHandler(&memAttendance{}, logger.New(t.TempDir()))

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/api/get-attendance", nil))

	var payload struct {
		Attendance *[]models.AttendanceRecord `json:"attendance"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if payload.Attendance == nil {
		t.Fatal("attendance key must be present even when empty")
	}
	if len(*payload.Attendance) != 0 {
		t.Errorf("Expected empty list, got %d", len(*payload.Attendance))
	}
}

func TestGetAttendance_ReturnsRecords(t *testing.T) {
	repo := &memAttendance{}
	repo.Insert(&models.AttendanceRecord{
		EmployeeID: "EMP001", EmployeeName: "Alice",
		Timestamp: "2024-03-02 09:10:00", Status: models.StatusCheckIn,
	})
	handler := GetAttendanceHandler(repo, logger.New(t.TempDir()))

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/api/get-attendance", nil))

	var payload struct {
		Attendance []models.AttendanceRecord `json:"attendance"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(payload.Attendance) != 1 || payload.Attendance[0].EmployeeName != "Alice" {
		t.Errorf("Unexpected payload: %+v", payload)
	}
}

func TestAddUser_InsertsEmployee(t *testing.T) {
	employees := &memEmployees{}
	cfg := testConfig()
	cfg.PhotoDirectory = t.TempDir()
	handler := AddUserHandler(employees, cfg, logger.New(t.TempDir()))

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.WriteField("emp_id", "EMP002")
	writer.WriteField("name", "Bob")
	writer.WriteField("role", "Engineer")
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/add-user", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	handler(w, req)

	emp, _ := employees.GetByEmpID("EMP002")
	if emp == nil || emp.Name != "Bob" || emp.Department != "Not Specified" {
		t.Errorf("Unexpected employee: %+v", emp)
	}
	if msg := decodeMessage(t, w); msg != "User added successfully" {
		t.Errorf("message = %q", msg)
	}
}
