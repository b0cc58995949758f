package entities

// Role: метка роли пользователя. Значения чувствительны к регистру.
type Role string

const (
	RoleDirector Role = "Director"
	RoleManager  Role = "Manager"
	RoleEmployee Role = "Employee"
	// RoleAnonymous: неаутентифицированный пользователь или неизвестная роль.
	RoleAnonymous Role = ""
)

// Known сообщает, является ли роль одной из трёх рабочих ролей.
func (r Role) Known() bool {
	switch r {
	case RoleDirector, RoleManager, RoleEmployee:
		return true
	}
	return false
}

type Company struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	TaxID string `json:"tax_id,omitempty"`
}

type Department struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	CompanyID     string `json:"company_id,omitempty"`
	ResponsibleID string `json:"responsible_id,omitempty"`
}

type Team struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DepartmentID  string `json:"department_id,omitempty"`
	ResponsibleID string `json:"responsible_id,omitempty"`
}

// Person: сотрудник. Employee/Manager привязаны к команде и через неё к
// департаменту, Director, к компании.
type Person struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	TaxID        string `json:"tax_id,omitempty"`
	Role         Role   `json:"role,omitempty"`
	CompanyID    string `json:"company_id,omitempty"`
	DepartmentID string `json:"department_id,omitempty"`
	TeamID       string `json:"team_id,omitempty"`
}
