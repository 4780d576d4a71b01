package sqlite

import (
	"database/sql"
	"fmt"

	"faceattend/internal/models"
)

// EmployeeRepository implements repository.EmployeeRepository for SQLite.
type EmployeeRepository struct {
	db *DB
}

// NewEmployeeRepository creates a new SQLite employee repository.
func NewEmployeeRepository(db *DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Insert adds a new employee record to the database.
func (r *EmployeeRepository) Insert(emp *models.Employee) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO employees (emp_id, name, role, department, photo_path)
		VALUES (?, ?, ?, ?, ?)
	`, emp.EmpID, emp.Name, emp.Role, emp.Department, emp.PhotoPath)
	if err != nil {
		return 0, fmt.Errorf("failed to insert employee: %w", err)
	}

	return result.LastInsertId()
}

// GetByEmpID retrieves an employee by their employee ID.
func (r *EmployeeRepository) GetByEmpID(empID string) (*models.Employee, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var emp models.Employee
	err := r.db.Conn().QueryRow(`
		SELECT id, emp_id, name, role, department, photo_path
		FROM employees WHERE emp_id = ?
	`, empID).Scan(&emp.ID, &emp.EmpID, &emp.Name, &emp.Role, &emp.Department, &emp.PhotoPath)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return &emp, nil
}

// GetAll retrieves all employees.
func (r *EmployeeRepository) GetAll() ([]models.Employee, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, emp_id, name, role, department, photo_path
		FROM employees ORDER BY emp_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []models.Employee
	for rows.Next() {
		var emp models.Employee
		if err := rows.Scan(&emp.ID, &emp.EmpID, &emp.Name, &emp.Role, &emp.Department, &emp.PhotoPath); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}

	return employees, rows.Err()
}
