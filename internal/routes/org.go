package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"okr-console/internal/authz"
	"okr-console/internal/controllers"
	"okr-console/pkg/middleware"
)

// runOrgRouter подключает плоские орг-страницы, :kind = company | department | team | person.
func runOrgRouter(secureGroup *echo.Group, deps Deps, logger *zap.Logger) {
	orgCtrl := controllers.NewOrgController(deps.Org, deps.Sync, logger)

	can := func(action string) echo.MiddlewareFunc {
		return middleware.RequireRouteFrom(deps.Gate, controllers.OrgRoute, action, logger)
	}

	org := secureGroup.Group("/org/:kind", can(authz.ActionView))
	{
		org.GET("", orgCtrl.List)
		org.GET("/:id/:child", orgCtrl.Children)
		org.POST("", orgCtrl.Create, can(authz.ActionCreate))
		org.DELETE("/:id", orgCtrl.Delete, can(authz.ActionDelete))
	}
}
