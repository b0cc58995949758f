package services

import (
	"context"

	"go.uber.org/zap"

	"okr-console/internal/authz"
	"okr-console/internal/dto"
	"okr-console/internal/entities"
	"okr-console/internal/integrations"
	"okr-console/internal/session"
	apperrors "okr-console/pkg/errors"
	"okr-console/pkg/service"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error)
	Logout(ctx context.Context, sc *session.Context) error
}

type AuthService struct {
	store    integrations.StoreProvider
	sessions *session.Store
	cascades *CascadeRegistry
	jwt      service.JWTService
	gate     *authz.Gate
	logger   *zap.Logger
}

func NewAuthService(
	store integrations.StoreProvider,
	sessions *session.Store,
	cascades *CascadeRegistry,
	jwt service.JWTService,
	gate *authz.Gate,
	logger *zap.Logger,
) AuthServiceInterface {
	return &AuthService{
		store:    store,
		sessions: sessions,
		cascades: cascades,
		jwt:      jwt,
		gate:     gate,
		logger:   logger.Named("auth"),
	}
}

// Login: учётные данные проверяет хранилище, консоль запоминает только
// пользователя и его роль.
func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error) {
	logger := s.logger.With(zap.String("email", payload.Email))

	rec, err := s.store.Login(ctx, payload.Email, payload.Password)
	if err != nil {
		logger.Warn("Вход отклонён", zap.Error(err))
		return nil, err
	}
	user := rec.ToPerson()
	if !user.Role.Known() {
		logger.Warn("У пользователя нет рабочей роли", zap.String("role", string(user.Role)))
		return nil, apperrors.ErrForbidden
	}

	sc, err := s.sessions.Open(ctx, session.User{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
		CompanyID:    user.CompanyID,
		DepartmentID: user.DepartmentID,
		TeamID:       user.TeamID,
	})
	if err != nil {
		return nil, err
	}

	token, err := s.jwt.GenerateToken(sc.ID(), user.ID, string(user.Role))
	if err != nil {
		logger.Error("Не удалось выпустить токен", zap.Error(err))
		return nil, err
	}

	logger.Info("Пользователь вошёл", zap.String("userID", user.ID), zap.String("role", string(user.Role)))
	return &dto.AuthResponseDTO{
		AccessToken: token,
		User:        PublicUser(user),
		Navigation:  Navigation(s.gate, user.Role),
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, sc *session.Context) error {
	if sc == nil {
		return apperrors.ErrUnauthorized
	}
	s.cascades.Drop(sc.ID())
	return s.sessions.Close(ctx, sc)
}

func PublicUser(p entities.Person) dto.UserPublicDTO {
	return dto.UserPublicDTO{
		ID:           p.ID,
		Name:         p.Name,
		Email:        p.Email,
		Role:         string(p.Role),
		CompanyID:    p.CompanyID,
		DepartmentID: p.DepartmentID,
		TeamID:       p.TeamID,
	}
}

// Navigation: меню роли вместе с видимостью действий на каждом маршруте.
func Navigation(gate *authz.Gate, role entities.Role) dto.NavigationDTO {
	nav := dto.NavigationDTO{Role: string(role), Default: gate.DefaultRoute(role)}
	for _, route := range gate.AllowedRoutes(role) {
		actions := gate.AllowedActions(role, route)
		nav.Routes = append(nav.Routes, dto.RouteDTO{
			Path:  route,
			Label: authz.RouteLabel(route),
			Actions: dto.ActionsDTO{
				CanCreate: actions.CanCreate,
				CanEdit:   actions.CanEdit,
				CanDelete: actions.CanDelete,
			},
		})
	}
	return nav
}
