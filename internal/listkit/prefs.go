package listkit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Prefs are the persisted per-view preferences: selected page size plus the
// last filter and sort selection. They survive navigation but carry no
// server-side schema dependency.
type Prefs struct {
	PageSize int         `json:"page_size"`
	Filter   FilterState `json:"filter"`
}

// PrefStore persists view preferences keyed by a view-specific string.
type PrefStore interface {
	Load(ctx context.Context, viewKey string) (Prefs, bool, error)
	Save(ctx context.Context, viewKey string, prefs Prefs) error
}

// MemoryPrefStore keeps preferences in process memory. Useful for tests and
// single-session tools.
type MemoryPrefStore struct {
	mu    sync.RWMutex
	prefs map[string]Prefs
}

// NewMemoryPrefStore constructs an empty in-memory store.
func NewMemoryPrefStore() *MemoryPrefStore {
	return &MemoryPrefStore{prefs: make(map[string]Prefs)}
}

func (s *MemoryPrefStore) Load(_ context.Context, viewKey string) (Prefs, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prefs[viewKey]
	return p, ok, nil
}

func (s *MemoryPrefStore) Save(_ context.Context, viewKey string, prefs Prefs) error {
	if viewKey == "" {
		return errors.New("listkit: view key required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[viewKey] = prefs
	return nil
}

// RedisPrefStore persists preferences in Redis so they survive process
// restarts within the same session window.
type RedisPrefStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPrefStore constructs a Redis-backed store.
func NewRedisPrefStore(client *redis.Client, ttl time.Duration) *RedisPrefStore {
	return &RedisPrefStore{client: client, ttl: ttl}
}

func prefKey(viewKey string) string {
	return fmt.Sprintf("listprefs:%s", viewKey)
}

func (s *RedisPrefStore) Load(ctx context.Context, viewKey string) (Prefs, bool, error) {
	raw, err := s.client.Get(ctx, prefKey(viewKey)).Bytes()
	if err == redis.Nil {
		return Prefs{}, false, nil
	}
	if err != nil {
		return Prefs{}, false, fmt.Errorf("listkit: load prefs: %w", err)
	}
	var p Prefs
	if err := json.Unmarshal(raw, &p); err != nil {
		return Prefs{}, false, fmt.Errorf("listkit: decode prefs: %w", err)
	}
	return p, true, nil
}

func (s *RedisPrefStore) Save(ctx context.Context, viewKey string, prefs Prefs) error {
	if viewKey == "" {
		return errors.New("listkit: view key required")
	}
	raw, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("listkit: encode prefs: %w", err)
	}
	if err := s.client.Set(ctx, prefKey(viewKey), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("listkit: save prefs: %w", err)
	}
	return nil
}
