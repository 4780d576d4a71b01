package models

import "time"

// TimestampLayout is the wire and storage format for attendance timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// Attendance statuses.
const (
	StatusCheckIn  = "Check-in"
	StatusCheckOut = "Check-out"
)

// Timing statuses assigned at check-in.
const (
	TimingOnTime = "On-time"
	TimingLate   = "Late"
	TimingNA     = "N/A"
)

// AttendanceRecord is one recorded attendance event.
type AttendanceRecord struct {
	ID           string `json:"_id"`
	EmployeeID   string `json:"emp_id,omitempty"`
	EmployeeName string `json:"emp_name"`
	Timestamp    string `json:"timestamp"` // TimestampLayout
	Status       string `json:"status"`
	TimingStatus string `json:"timing_status,omitempty"`
}

// Date returns the date component of the record timestamp.
func (r AttendanceRecord) Date() string {
	if len(r.Timestamp) < 10 {
		return r.Timestamp
	}
	return r.Timestamp[:10]
}

// Time parses the full timestamp in local time. Malformed timestamps yield the
// zero time.
func (r AttendanceRecord) Time() time.Time {
	t, err := time.ParseInLocation(TimestampLayout, r.Timestamp, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}
