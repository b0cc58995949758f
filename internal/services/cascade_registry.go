package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	apperrors "okr-console/pkg/errors"
)

// Страницы, на которых живёт каскад, и их маршруты.
var cascadePages = map[string]string{
	"home": "/",
	"rpe":  "/rpe",
}

// PageRoute: маршрут страницы с каскадом.
func PageRoute(page string) (string, error) {
	route, ok := cascadePages[page]
	if !ok {
		return "", apperrors.ErrUnknownPage
	}
	return route, nil
}

type cascadeKey struct {
	sessionID string
	page      string
}

// CascadeRegistry хранит по одному каскаду на пару (сессия, страница).
type CascadeRegistry struct {
	resolver ResolverInterface
	logger   *zap.Logger
	mu       sync.Mutex
	cascades map[cascadeKey]*Cascade
}

func NewCascadeRegistry(resolver ResolverInterface, logger *zap.Logger) *CascadeRegistry {
	return &CascadeRegistry{
		resolver: resolver,
		logger:   logger.Named("cascade"),
		cascades: make(map[cascadeKey]*Cascade),
	}
}

// Get возвращает каскад страницы, создавая пустой при первом обращении.
// scope ограничивает варианты групп, nil ничего не ограничивает.
func (r *CascadeRegistry) Get(sessionID, page string, scope GroupScope) (*Cascade, error) {
	if _, err := PageRoute(page); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := cascadeKey{sessionID: sessionID, page: page}
	c, ok := r.cascades[key]
	if !ok {
		c = NewCascade(r.resolver, r.logger.With(zap.String("page", page)))
		r.cascades[key] = c
	}
	c.Restrict(scope)
	return c, nil
}

// Visit обрабатывает новый заход на страницу, каскад возвращается в начальное
// состояние, незавершённые разрешения будут отброшены.
func (r *CascadeRegistry) Visit(ctx context.Context, sessionID, page string, scope GroupScope) (CascadeState, error) {
	c, err := r.Get(sessionID, page, scope)
	if err != nil {
		return CascadeState{}, err
	}
	return c.Dispatch(ctx, ResetCascade{})
}

// Drop забывает все каскады сессии (выход).
func (r *CascadeRegistry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.cascades {
		if key.sessionID == sessionID {
			delete(r.cascades, key)
		}
	}
}
