package repository

import "faceattend/internal/models"

// AttendanceRepository defines the interface for attendance data operations.
type AttendanceRepository interface {
	Insert(rec *models.AttendanceRecord) (int64, error)

	GetAll() ([]models.AttendanceRecord, error)
	GetByDate(date string) ([]models.AttendanceRecord, error)
	GetLastByEmployee(empID string) (*models.AttendanceRecord, error)
}

// EmployeeRepository defines the interface for employee data operations.
type EmployeeRepository interface {
	Insert(emp *models.Employee) (int64, error)

	GetByEmpID(empID string) (*models.Employee, error)
	GetAll() ([]models.Employee, error)
}
