package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCacheRepository: кеш в памяти процесса для запуска без Redis.
// Значения приводятся к строке так же, как это делает Redis.
type MemoryCacheRepository struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCacheRepository() *MemoryCacheRepository {
	return &MemoryCacheRepository{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (r *MemoryCacheRepository) Get(ctx context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[key]
	if !ok || entry.expired(r.now()) {
		delete(r.entries, key)
		return "", ErrCacheMiss
	}
	return entry.value, nil
}

func (r *MemoryCacheRepository) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		s = fmt.Sprint(v)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	entry := memoryEntry{value: s}
	if expiration > 0 {
		entry.expiresAt = r.now().Add(expiration)
	}
	r.entries[key] = entry
	return nil
}

func (r *MemoryCacheRepository) Del(ctx context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range keys {
		delete(r.entries, key)
	}
	return nil
}

func (r *MemoryCacheRepository) Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[key]
	if !ok || entry.expired(r.now()) {
		delete(r.entries, key)
		return false, nil
	}
	entry.expiresAt = r.now().Add(expiration)
	r.entries[key] = entry
	return true, nil
}
