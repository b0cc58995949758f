package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"okr-console/internal/authz"
	"okr-console/internal/dto"
	"okr-console/internal/services"
	"okr-console/pkg/middleware"
	"okr-console/pkg/utils"
)

// NavigationController отвечает на вопрос «что видит эта роль».
// Работает и без сессии: тогда роль анонимная.
type NavigationController struct {
	gate   *authz.Gate
	logger *zap.Logger
}

func NewNavigationController(gate *authz.Gate, logger *zap.Logger) *NavigationController {
	return &NavigationController{gate: gate, logger: logger}
}

func (ctrl *NavigationController) Navigation(c echo.Context) error {
	role := middleware.SessionFrom(c).Role()
	return utils.SuccessResponse(c, services.Navigation(ctrl.gate, role), "Меню получено", http.StatusOK)
}

// Resolve: маршрут, который реально откроется по ?route=.
func (ctrl *NavigationController) Resolve(c echo.Context) error {
	requested := c.QueryParam("route")
	role := middleware.SessionFrom(c).Role()
	route, redirected := ctrl.gate.Navigate(role, requested)
	return utils.SuccessResponse(c, dto.ResolvedRouteDTO{
		Requested:  requested,
		Route:      route,
		Redirected: redirected,
	}, "Маршрут определён", http.StatusOK)
}
