package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"okr-console/internal/authz"
	"okr-console/internal/session"
	"okr-console/pkg/contextkeys"
	apperrors "okr-console/pkg/errors"
	"okr-console/pkg/service"
	"okr-console/pkg/utils"
)

type AuthMiddleware struct {
	jwtService service.JWTService
	sessions   *session.Store
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, sessions *session.Store, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		sessions:   sessions,
		logger:     logger.Named("auth_middleware"),
	}
}

// Auth: токен → сессия → контекст запроса. Токен берётся из заголовка
// Authorization, а для WebSocket из параметра token.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString, err := bearerToken(c)
		if err != nil {
			return utils.ErrorResponse(c, err, m.logger)
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			m.logger.Warn("Ошибка валидации токена", zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}

		sc, err := m.sessions.Load(c.Request().Context(), claims.SessionID)
		if err != nil {
			return utils.ErrorResponse(c, err, m.logger)
		}

		ctx := context.WithValue(c.Request().Context(), contextkeys.SessionKey, sc)
		ctx = context.WithValue(ctx, contextkeys.SessionIDKey, sc.ID())
		c.SetRequest(c.Request().WithContext(ctx))
		c.Set(string(contextkeys.SessionKey), sc)
		return next(c)
	}
}

// OptionalAuth кладёт сессию, если токен есть и действителен; иначе
// запрос идёт дальше как анонимный.
func (m *AuthMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString, err := bearerToken(c)
		if err != nil {
			return next(c)
		}
		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			m.logger.Debug("Недействительный токен, запрос считается анонимным", zap.Error(err))
			return next(c)
		}
		sc, err := m.sessions.Load(c.Request().Context(), claims.SessionID)
		if err != nil {
			return next(c)
		}
		c.Set(string(contextkeys.SessionKey), sc)
		return next(c)
	}
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		if token := c.QueryParam("token"); token != "" {
			return token, nil
		}
		return "", apperrors.ErrEmptyAuthHeader
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", apperrors.ErrInvalidAuthHeader
	}
	return parts[1], nil
}

// SessionFrom: сессия, положенная Auth; nil для открытых маршрутов.
func SessionFrom(c echo.Context) *session.Context {
	sc, _ := c.Get(string(contextkeys.SessionKey)).(*session.Context)
	return sc
}

// RequireRoute пропускает запрос, только если роль сессии может выполнить
// action на route.
func RequireRoute(gate *authz.Gate, route, action string, logger *zap.Logger) echo.MiddlewareFunc {
	return RequireRouteFrom(gate, func(echo.Context) (string, error) { return route, nil }, action, logger)
}

// RequireRouteFrom: то же, но маршрут вычисляется из запроса.
func RequireRouteFrom(gate *authz.Gate, resolve func(c echo.Context) (string, error), action string, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route, err := resolve(c)
			if err != nil {
				return utils.ErrorResponse(c, err, logger)
			}
			role := SessionFrom(c).Role()
			if !gate.Can(role, route, action) {
				logger.Warn("Доступ запрещён",
					zap.String("role", string(role)),
					zap.String("route", route),
					zap.String("action", action),
				)
				return utils.ErrorResponse(c, apperrors.ErrForbidden, logger)
			}
			return next(c)
		}
	}
}
