package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"okr-console/internal/authz"
	"okr-console/internal/controllers"
	"okr-console/pkg/middleware"
)

func runAuthRouter(api, secureGroup *echo.Group, deps Deps, logger *zap.Logger, authMW *middleware.AuthMiddleware) {
	authCtrl := controllers.NewAuthController(deps.Auth, logger)
	navCtrl := controllers.NewNavigationController(deps.Gate, logger)
	profileCtrl := controllers.NewProfileController(deps.Org, logger)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", authCtrl.Login)
		authGroup.POST("/logout", authCtrl.Logout, authMW.Auth)
	}

	navGroup := api.Group("/navigation", authMW.OptionalAuth)
	{
		navGroup.GET("", navCtrl.Navigation)
		navGroup.GET("/resolve", navCtrl.Resolve)
	}

	secureGroup.GET("/profile", profileCtrl.Profile, middleware.RequireRoute(deps.Gate, authz.RouteProfile, authz.ActionView, logger))
}
