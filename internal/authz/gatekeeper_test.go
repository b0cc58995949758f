package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"okr-console/internal/entities"
)

func newTestGate(t *testing.T) *Gate {
	t.Helper()
	g, err := NewGate(zap.NewNop())
	require.NoError(t, err)
	return g
}

var allRoles = []entities.Role{
	entities.RoleAnonymous,
	entities.RoleEmployee,
	entities.RoleManager,
	entities.RoleDirector,
	entities.Role("Intern"),
}

func TestAllowedRoutes_PerRole(t *testing.T) {
	g := newTestGate(t)

	assert.Equal(t, []string{RouteLogin}, g.AllowedRoutes(entities.RoleAnonymous))
	assert.Equal(t, []string{RouteHome, RouteProfile, RouteLogin}, g.AllowedRoutes(entities.RoleEmployee))
	assert.Equal(t, []string{RouteHome, RouteTeams, RouteEmployees, RouteRPE, RouteProfile, RouteLogin}, g.AllowedRoutes(entities.RoleManager))
	assert.Equal(t, Routes, g.AllowedRoutes(entities.RoleDirector))
}

func TestAllowedRoutes_NeverEmpty(t *testing.T) {
	g := newTestGate(t)

	for _, role := range allRoles {
		assert.NotEmpty(t, g.AllowedRoutes(role), "роль %q", role)
		assert.True(t, g.CanView(role, g.DefaultRoute(role)), "роль %q", role)
	}
}

func TestAllowedRoutes_Monotonic(t *testing.T) {
	g := newTestGate(t)
	ladder := []entities.Role{entities.RoleAnonymous, entities.RoleEmployee, entities.RoleManager, entities.RoleDirector}

	for i := 1; i < len(ladder); i++ {
		lower, higher := ladder[i-1], ladder[i]
		for _, route := range g.AllowedRoutes(lower) {
			assert.True(t, g.CanView(higher, route), "%s видит %s, а %s нет", lower, route, higher)
		}
		for _, route := range Routes {
			for _, act := range crud {
				if g.Can(lower, route, act) {
					assert.True(t, g.Can(higher, route, act), "%s может %s %s, а %s нет", lower, act, route, higher)
				}
			}
		}
	}
}

func TestAllowedRoutes_ReturnsCopy(t *testing.T) {
	g := newTestGate(t)

	routes := g.AllowedRoutes(entities.RoleDirector)
	routes[0] = "/hacked"

	assert.Equal(t, RouteHome, g.AllowedRoutes(entities.RoleDirector)[0])
}

func TestNavigate(t *testing.T) {
	g := newTestGate(t)

	cases := []struct {
		name       string
		role       entities.Role
		requested  string
		target     string
		redirected bool
	}{
		{"сотрудник на департаменты", entities.RoleEmployee, RouteDepartments, RouteProfile, true},
		{"сотрудник на профиль", entities.RoleEmployee, RouteProfile, RouteProfile, false},
		{"менеджер на компании", entities.RoleManager, RouteCompany, RouteHome, true},
		{"директор на компании", entities.RoleDirector, RouteCompany, RouteCompany, false},
		{"аноним на главную", entities.RoleAnonymous, RouteHome, RouteLogin, true},
		{"неизвестная роль", entities.Role("Intern"), RouteHome, RouteLogin, true},
		{"неизвестный маршрут", entities.RoleDirector, "/reports", RouteHome, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target, redirected := g.Navigate(tc.role, tc.requested)
			assert.Equal(t, tc.target, target)
			assert.Equal(t, tc.redirected, redirected)
		})
	}
}

func TestAllowedActions(t *testing.T) {
	g := newTestGate(t)

	assert.Equal(t, Actions{}, g.AllowedActions(entities.RoleEmployee, RouteHome))
	assert.Equal(t, Actions{CanCreate: true, CanEdit: true, CanDelete: true}, g.AllowedActions(entities.RoleManager, RouteRPE))
	assert.Equal(t, Actions{}, g.AllowedActions(entities.RoleManager, RouteCompany))
	assert.Equal(t, Actions{CanCreate: true, CanEdit: true, CanDelete: true}, g.AllowedActions(entities.RoleDirector, RouteDepartments))
	assert.Equal(t, Actions{}, g.AllowedActions(entities.Role("director"), RouteDepartments))
}

func TestRoleCaseSensitive(t *testing.T) {
	g := newTestGate(t)

	assert.Equal(t, g.AllowedRoutes(entities.RoleAnonymous), g.AllowedRoutes(entities.Role("DIRECTOR")))
}
