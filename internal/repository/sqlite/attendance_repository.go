package sqlite

import (
	"database/sql"
	"fmt"
	"strconv"

	"faceattend/internal/models"
)

// AttendanceRepository implements repository.AttendanceRepository for SQLite.
type AttendanceRepository struct {
	db *DB
}

// NewAttendanceRepository creates a new SQLite attendance repository.
func NewAttendanceRepository(db *DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Insert adds a new attendance record to the database.
func (r *AttendanceRepository) Insert(rec *models.AttendanceRecord) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO attendance (emp_id, emp_name, timestamp, status, timing_status)
		VALUES (?, ?, ?, ?, ?)
	`, rec.EmployeeID, rec.EmployeeName, rec.Timestamp, rec.Status, rec.TimingStatus)
	if err != nil {
		return 0, fmt.Errorf("failed to insert attendance record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get attendance record id: %w", err)
	}

	rec.ID = strconv.FormatInt(id, 10)
	return id, nil
}

// GetAll retrieves every attendance record, oldest first.
func (r *AttendanceRepository) GetAll() ([]models.AttendanceRecord, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, emp_id, emp_name, timestamp, status, timing_status
		FROM attendance ORDER BY timestamp ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetByDate retrieves records whose timestamp falls on the given date
// ("YYYY-MM-DD"), oldest first.
func (r *AttendanceRepository) GetByDate(date string) ([]models.AttendanceRecord, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, emp_id, emp_name, timestamp, status, timing_status
		FROM attendance WHERE timestamp LIKE ? ORDER BY timestamp ASC
	`, date+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance by date: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetLastByEmployee retrieves the most recent record for an employee, or nil
// if the employee has none.
func (r *AttendanceRepository) GetLastByEmployee(empID string) (*models.AttendanceRecord, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var rec models.AttendanceRecord
	var id int64
	err := r.db.Conn().QueryRow(`
		SELECT id, emp_id, emp_name, timestamp, status, timing_status
		FROM attendance WHERE emp_id = ? ORDER BY timestamp DESC LIMIT 1
	`, empID).Scan(&id, &rec.EmployeeID, &rec.EmployeeName, &rec.Timestamp, &rec.Status, &rec.TimingStatus)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last attendance record: %w", err)
	}

	rec.ID = strconv.FormatInt(id, 10)
	return &rec, nil
}

func scanRecords(rows *sql.Rows) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	for rows.Next() {
		var rec models.AttendanceRecord
		var id int64
		if err := rows.Scan(&id, &rec.EmployeeID, &rec.EmployeeName, &rec.Timestamp, &rec.Status, &rec.TimingStatus); err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		rec.ID = strconv.FormatInt(id, 10)
		records = append(records, rec)
	}

	return records, rows.Err()
}
