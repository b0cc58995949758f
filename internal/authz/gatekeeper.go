package authz

import (
	"go.uber.org/zap"

	"okr-console/internal/entities"
)

// Actions: видимость кнопок создания, редактирования и удаления.
type Actions struct {
	CanCreate bool
	CanEdit   bool
	CanDelete bool
}

// Gate отвечает, куда пользователь может попасть и что может делать.
// Решения вычисляются один раз при создании; дальше это чистые функции роли.
type Gate struct {
	routes  map[string][]string
	allowed map[string]map[string]map[string]bool
	logger  *zap.Logger
}

func NewGate(logger *zap.Logger) (*Gate, error) {
	enf, err := newEnforcer()
	if err != nil {
		return nil, err
	}

	g := &Gate{
		routes:  make(map[string][]string),
		allowed: make(map[string]map[string]map[string]bool),
		logger:  logger.Named("authz"),
	}
	for _, sub := range []string{subjectAnonymous, subjectEmployee, subjectManager, subjectDirector} {
		g.allowed[sub] = make(map[string]map[string]bool)
		for _, route := range Routes {
			g.allowed[sub][route] = make(map[string]bool)
			for _, act := range crud {
				ok, err := enf.Enforce(sub, route, act)
				if err != nil {
					return nil, err
				}
				g.allowed[sub][route][act] = ok
			}
			if g.allowed[sub][route][ActionView] {
				g.routes[sub] = append(g.routes[sub], route)
			}
		}
	}
	return g, nil
}

// subject: неизвестная роль ведёт себя как неаутентифицированный пользователь.
func subject(role entities.Role) string {
	switch role {
	case entities.RoleDirector:
		return subjectDirector
	case entities.RoleManager:
		return subjectManager
	case entities.RoleEmployee:
		return subjectEmployee
	}
	return subjectAnonymous
}

// AllowedRoutes: маршруты роли в порядке меню. Никогда не пуст.
func (g *Gate) AllowedRoutes(role entities.Role) []string {
	routes := g.routes[subject(role)]
	out := make([]string, len(routes))
	copy(out, routes)
	return out
}

func (g *Gate) CanView(role entities.Role, route string) bool {
	return g.allowed[subject(role)][route][ActionView]
}

// Can: разрешено ли действие над маршрутом. Неизвестный маршрут запрещён.
func (g *Gate) Can(role entities.Role, route, action string) bool {
	return g.allowed[subject(role)][route][action]
}

func (g *Gate) AllowedActions(role entities.Role, route string) Actions {
	perms := g.allowed[subject(role)][route]
	return Actions{
		CanCreate: perms[ActionCreate],
		CanEdit:   perms[ActionEdit],
		CanDelete: perms[ActionDelete],
	}
}

// DefaultRoute: куда отправлять при запрете.
func (g *Gate) DefaultRoute(role entities.Role) string {
	switch subject(role) {
	case subjectAnonymous:
		return RouteLogin
	case subjectEmployee:
		return RouteProfile
	}
	return RouteHome
}

// Navigate возвращает маршрут, который будет показан, и признак перенаправления.
func (g *Gate) Navigate(role entities.Role, requested string) (string, bool) {
	if g.CanView(role, requested) {
		return requested, false
	}
	target := g.DefaultRoute(role)
	g.logger.Debug("Маршрут недоступен роли, перенаправление",
		zap.String("role", string(role)),
		zap.String("requested", requested),
		zap.String("target", target),
	)
	return target, true
}
