package dto

type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponseDTO struct {
	AccessToken string        `json:"accessToken"`
	User        UserPublicDTO `json:"user"`
	Navigation  NavigationDTO `json:"navigation"`
}

type UserPublicDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	CompanyID    string `json:"company_id,omitempty"`
	DepartmentID string `json:"department_id,omitempty"`
	TeamID       string `json:"team_id,omitempty"`
}

type RouteDTO struct {
	Path    string     `json:"path"`
	Label   string     `json:"label"`
	Actions ActionsDTO `json:"actions"`
}

type ActionsDTO struct {
	CanCreate bool `json:"can_create"`
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type NavigationDTO struct {
	Role    string     `json:"role"`
	Default string     `json:"default"`
	Routes  []RouteDTO `json:"routes"`
}

// ResolvedRouteDTO: куда на самом деле попадёт пользователь.
type ResolvedRouteDTO struct {
	Requested  string `json:"requested"`
	Route      string `json:"route"`
	Redirected bool   `json:"redirected"`
}
