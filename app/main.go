package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"okr-console/internal/authz"
	"okr-console/internal/integrations"
	"okr-console/internal/integrations/mock"
	"okr-console/internal/integrations/okrstore"
	"okr-console/internal/listeners"
	"okr-console/internal/repositories"
	"okr-console/internal/routes"
	"okr-console/internal/services"
	"okr-console/internal/session"
	"okr-console/pkg/config"
	apperrors "okr-console/pkg/errors"
	"okr-console/pkg/eventbus"
	applogger "okr-console/pkg/logger"
	"okr-console/pkg/service"
	"okr-console/pkg/utils"
	appwebsocket "okr-console/pkg/websocket"
	"okr-console/seeders"
)

func main() {
	// 1. Конфиг и логгер
	cfg := config.New()
	logger := applogger.NewLogger(cfg.LogFile)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Echo и общие middleware
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err, nil)
				utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		ExposeHeaders:    []string{echo.HeaderContentDisposition},
	}))
	e.Validator = utils.NewValidator(validator.New())

	// 3. Хранилище сессий: Redis, а без адреса, память процесса
	var cache repositories.CacheRepositoryInterface
	if cfg.Redis.Address != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if _, err := redisClient.Ping(ctx).Result(); err != nil {
			logger.Fatal("не удалось подключиться к Redis", zap.Error(err), zap.String("address", cfg.Redis.Address))
		}
		defer redisClient.Close()
		cache = repositories.NewRedisCacheRepository(redisClient)
	} else {
		logger.Warn("REDIS_ADDRESS не задан, сессии хранятся в памяти")
		cache = repositories.NewMemoryCacheRepository()
	}

	// 4. Хранилище OKR
	registry := integrations.NewRegistry()
	memory := mock.NewMockProvider()
	for _, p := range []integrations.StoreProvider{
		okrstore.New(cfg.Remote.BaseURL, cfg.Remote.Timeout, logger),
		memory,
	} {
		if err := registry.Register(p); err != nil {
			logger.Fatal("не удалось зарегистрировать хранилище", zap.Error(err))
		}
	}
	if err := registry.SetActive(cfg.Remote.Provider); err != nil {
		logger.Fatal("неизвестное хранилище", zap.String("provider", cfg.Remote.Provider), zap.Error(err))
	}
	store, err := registry.GetActive()
	if err != nil {
		logger.Fatal("хранилище не выбрано", zap.Error(err))
	}
	logger.Info("Хранилище OKR", zap.String("provider", store.Name()), zap.String("base_url", cfg.Remote.BaseURL))

	// 5. Уведомления об изменениях
	bus := eventbus.New(logger)
	hub := appwebsocket.NewHub(logger)
	go hub.Run(ctx)
	listeners.NewRefreshListener(hub, 300*time.Millisecond, logger).Register(bus)

	// 6. Сервисы
	resolver := services.NewResolver(store, logger)
	cascades := services.NewCascadeRegistry(resolver, logger)
	orgService := services.NewOrgService(store, logger)
	synchronizer := services.NewSynchronizer(store, bus, logger)

	if store.Name() == memory.Name() {
		seeder := seeders.New(services.NewSynchronizer(store, nil, logger), "demo12345", logger)
		if err := seeder.SeedOrg(ctx); err != nil {
			logger.Fatal("не удалось наполнить память демо-данными", zap.Error(err))
		}
		if err := seeder.SeedGoals(ctx); err != nil {
			logger.Fatal("не удалось наполнить память демо-данными", zap.Error(err))
		}
	}

	gate, err := authz.NewGate(logger)
	if err != nil {
		logger.Fatal("не удалось загрузить политику доступа", zap.Error(err))
	}
	sessions := session.NewStore(cache, cfg.Session.TTL, logger)
	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL)
	authService := services.NewAuthService(store, sessions, cascades, jwtSvc, gate, logger)

	// 7. Роуты
	routes.InitRouter(e, routes.Deps{
		Auth:     authService,
		Resolver: resolver,
		Cascades: cascades,
		Org:      orgService,
		Sync:     synchronizer,
		Gate:     gate,
		Sessions: sessions,
		JWT:      jwtSvc,
		Hub:      hub,
	}, &routes.Loggers{
		Main:    logger,
		Auth:    logger.Named("auth"),
		Cascade: logger.Named("cascade"),
		Org:     logger.Named("org"),
	})

	// 8. Запуск и остановка
	go func() {
		logger.Info("🚀 Сервер запущен", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки сервера", zap.Error(err))
	}
	bus.Wait()
	logger.Info("Сервер остановлен")
}
