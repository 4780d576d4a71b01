package models

// Employee is a registered employee the backend can attribute attendance to.
type Employee struct {
	ID         int64  `json:"id"`
	EmpID      string `json:"emp_id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department"`
	PhotoPath  string `json:"photo,omitempty"`
}
