package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"okr-console/internal/authz"
	"okr-console/internal/controllers"
	"okr-console/pkg/middleware"
)

// runCascadeRouter подключает страницы с каскадом (/ и /rpe), :page = home | rpe.
func runCascadeRouter(secureGroup *echo.Group, deps Deps, logger *zap.Logger) {
	cascadeCtrl := controllers.NewCascadeController(deps.Cascades, deps.Resolver, deps.Gate, logger)
	goalCtrl := controllers.NewGoalController(cascadeCtrl, deps.Sync, logger)

	can := func(action string) echo.MiddlewareFunc {
		return middleware.RequireRouteFrom(deps.Gate, controllers.PageRoute, action, logger)
	}

	pages := secureGroup.Group("/pages/:page", can(authz.ActionView))
	{
		pages.POST("/visit", cascadeCtrl.Visit)
		pages.GET("/cascade", cascadeCtrl.Get)
		pages.PUT("/cascade/group-type", cascadeCtrl.SelectGroupType)
		pages.PUT("/cascade/group", cascadeCtrl.SelectGroup)
		pages.PUT("/cascade/data-type", cascadeCtrl.SelectDataType)
		pages.GET("/cascade/members", cascadeCtrl.Members)
		pages.GET("/cascade/parents", cascadeCtrl.Parents)
		pages.GET("/cascade/export", cascadeCtrl.Export)
		pages.GET("/goals/:type/:id/children", cascadeCtrl.GoalChildren)

		pages.POST("/goals/:type", goalCtrl.Create, can(authz.ActionCreate))
		pages.DELETE("/goals/:type/:id", goalCtrl.Delete, can(authz.ActionDelete))
	}
}
