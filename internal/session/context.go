package session

import (
	"sync"

	"okr-console/internal/entities"
)

// User описывает текущего пользователя, консоли нужны только id и роль.
type User struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Role         entities.Role `json:"role"`
	CompanyID    string        `json:"company_id,omitempty"`
	DepartmentID string        `json:"department_id,omitempty"`
	TeamID       string        `json:"team_id,omitempty"`
}

// Context: сессия одного входа. Пользователь меняется только через
// SetUser и снимается через Clear при выходе.
type Context struct {
	id   string
	mu   sync.RWMutex
	user *User
}

func NewContext(id string) *Context {
	return &Context{id: id}
}

func (c *Context) ID() string { return c.id }

func (c *Context) SetUser(u User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = &u
}

func (c *Context) User() (User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return User{}, false
	}
	return *c.user, true
}

// Role: RoleAnonymous, если пользователя нет.
func (c *Context) Role() entities.Role {
	if c == nil {
		return entities.RoleAnonymous
	}
	u, ok := c.User()
	if !ok {
		return entities.RoleAnonymous
	}
	return u.Role
}

func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = nil
}
