package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"okr-console/internal/repositories"
	apperrors "okr-console/pkg/errors"
)

const keyPrefix = "session:"

// Store хранит сессии в кеше (Redis или память) с скользящим TTL.
type Store struct {
	cache  repositories.CacheRepositoryInterface
	ttl    time.Duration
	logger *zap.Logger
}

func NewStore(cache repositories.CacheRepositoryInterface, ttl time.Duration, logger *zap.Logger) *Store {
	return &Store{cache: cache, ttl: ttl, logger: logger.Named("session")}
}

func key(id string) string { return keyPrefix + id }

// Open создаёт новую сессию для пользователя.
func (s *Store) Open(ctx context.Context, user User) (*Context, error) {
	sc := NewContext(uuid.NewString())
	sc.SetUser(user)

	raw, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации сессии: %w", err)
	}
	if err := s.cache.Set(ctx, key(sc.ID()), raw, s.ttl); err != nil {
		s.logger.Error("Не удалось сохранить сессию", zap.Error(err))
		return nil, err
	}
	s.logger.Info("Сессия открыта", zap.String("sessionID", sc.ID()), zap.String("userID", user.ID))
	return sc, nil
}

// Load поднимает сессию и продлевает её жизнь.
func (s *Store) Load(ctx context.Context, id string) (*Context, error) {
	raw, err := s.cache.Get(ctx, key(id))
	if err != nil {
		if errors.Is(err, repositories.ErrCacheMiss) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, err
	}
	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Warn("Повреждённая запись сессии", zap.String("sessionID", id), zap.Error(err))
		return nil, apperrors.ErrSessionNotFound
	}
	if _, err := s.cache.Expire(ctx, key(id), s.ttl); err != nil {
		s.logger.Warn("Не удалось продлить сессию", zap.String("sessionID", id), zap.Error(err))
	}

	sc := NewContext(id)
	sc.SetUser(user)
	return sc, nil
}

// Close удаляет сессию и очищает контекст.
func (s *Store) Close(ctx context.Context, sc *Context) error {
	if err := s.cache.Del(ctx, key(sc.ID())); err != nil {
		return err
	}
	sc.Clear()
	s.logger.Info("Сессия закрыта", zap.String("sessionID", sc.ID()))
	return nil
}
