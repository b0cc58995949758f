package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"okr-console/internal/entities"
	"okr-console/internal/repositories"
	apperrors "okr-console/pkg/errors"
)

// expireSpy запоминает продления TTL.
type expireSpy struct {
	repositories.CacheRepositoryInterface
	extended []string
}

func (s *expireSpy) Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	s.extended = append(s.extended, key)
	return s.CacheRepositoryInterface.Expire(ctx, key, expiration)
}

func director() User {
	return User{ID: "p1", Name: "Анна", Email: "anna@vector.example", Role: entities.RoleDirector, CompanyID: "c1"}
}

func TestStore_OpenLoad(t *testing.T) {
	cache := &expireSpy{CacheRepositoryInterface: repositories.NewMemoryCacheRepository()}
	store := NewStore(cache, time.Hour, zap.NewNop())
	ctx := context.Background()

	opened, err := store.Open(ctx, director())
	require.NoError(t, err)
	require.NotEmpty(t, opened.ID())

	loaded, err := store.Load(ctx, opened.ID())
	require.NoError(t, err)
	user, ok := loaded.User()
	require.True(t, ok)
	assert.Equal(t, director(), user)
	assert.Equal(t, entities.RoleDirector, loaded.Role())
	assert.Equal(t, []string{"session:" + opened.ID()}, cache.extended)
}

func TestStore_SessionsAreIndependent(t *testing.T) {
	store := NewStore(repositories.NewMemoryCacheRepository(), time.Hour, zap.NewNop())
	ctx := context.Background()

	first, err := store.Open(ctx, director())
	require.NoError(t, err)
	second, err := store.Open(ctx, User{ID: "p2", Role: entities.RoleEmployee})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID(), second.ID())

	require.NoError(t, store.Close(ctx, first))

	_, err = store.Load(ctx, first.ID())
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	loaded, err := store.Load(ctx, second.ID())
	require.NoError(t, err)
	assert.Equal(t, entities.RoleEmployee, loaded.Role())
}

func TestStore_CloseClearsContext(t *testing.T) {
	store := NewStore(repositories.NewMemoryCacheRepository(), time.Hour, zap.NewNop())
	ctx := context.Background()
	sc, err := store.Open(ctx, director())
	require.NoError(t, err)

	require.NoError(t, store.Close(ctx, sc))

	_, ok := sc.User()
	assert.False(t, ok)
	assert.Equal(t, entities.RoleAnonymous, sc.Role())
}

func TestStore_CorruptedEntryIsNotFound(t *testing.T) {
	cache := repositories.NewMemoryCacheRepository()
	store := NewStore(cache, time.Hour, zap.NewNop())
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "session:broken", "{не json", time.Hour))

	_, err := store.Load(ctx, "broken")

	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestContext_NilIsAnonymous(t *testing.T) {
	var sc *Context
	assert.Equal(t, entities.RoleAnonymous, sc.Role())
}
