package employees

import "time"

type Employee struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId,omitempty"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	Designation string     `json:"designation,omitempty"`
	SalaryType  string     `json:"salaryType"`
	BaseSalary  float64    `json:"baseSalary"`
	JoiningDate *time.Time `json:"joiningDate,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
