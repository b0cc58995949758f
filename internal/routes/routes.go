package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"okr-console/internal/authz"
	"okr-console/internal/controllers"
	"okr-console/internal/services"
	"okr-console/internal/session"
	apperrors "okr-console/pkg/errors"
	"okr-console/pkg/middleware"
	"okr-console/pkg/service"
	"okr-console/pkg/utils"
	appwebsocket "okr-console/pkg/websocket"
)

type Loggers struct {
	Main    *zap.Logger
	Auth    *zap.Logger
	Cascade *zap.Logger
	Org     *zap.Logger
}

// Deps: собранные в main компоненты, которые роутер раздаёт контроллерам.
type Deps struct {
	Auth     services.AuthServiceInterface
	Resolver services.ResolverInterface
	Cascades *services.CascadeRegistry
	Org      services.OrgServiceInterface
	Sync     services.SynchronizerInterface
	Gate     *authz.Gate
	Sessions *session.Store
	JWT      service.JWTService
	Hub      *appwebsocket.Hub
}

func InitRouter(e *echo.Echo, deps Deps, loggers *Loggers) {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")

	e.Use(middleware.RequestLogger(loggers.Main))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(deps.JWT, deps.Sessions, loggers.Auth)
	secureGroup := api.Group("", authMW.Auth)
	// группа с middleware регистрирует свой RouteNotFound на /api/* за Auth;
	// неизвестный путь должен давать 404 и без токена
	notFound := func(c echo.Context) error {
		return utils.ErrorResponse(c, apperrors.ErrNotFound, loggers.Main)
	}
	api.RouteNotFound("", notFound)
	api.RouteNotFound("/*", notFound)

	runAuthRouter(api, secureGroup, deps, loggers.Auth, authMW)
	runCascadeRouter(secureGroup, deps, loggers.Cascade)
	runOrgRouter(secureGroup, deps, loggers.Org)

	wsController := controllers.NewWebSocketController(deps.Hub, loggers.Main)
	secureGroup.GET("/ws", wsController.ServeWs)

	loggers.Main.Info("INIT_ROUTER: Создание маршрутов завершено")
}
