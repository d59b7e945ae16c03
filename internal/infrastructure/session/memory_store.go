package session

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"

	domain "jan-server/services/assistant-api/internal/domain/session"
)

// MemoryStore keeps session settings in an in-process LRU cache. It serves
// single-instance deployments that run without Redis; settings are lost on
// restart.
type MemoryStore struct {
	cache *lru.Cache
	ttl   time.Duration
	mu    sync.RWMutex
}

type memoryEntry struct {
	settings  domain.Settings
	expiresAt time.Time
}

// NewMemoryStore builds an in-memory session store holding at most maxSize
// sessions.
func NewMemoryStore(maxSize int, ttl time.Duration) (*MemoryStore, error) {
	cache, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryStore{
		cache: cache,
		ttl:   ttl,
	}, nil
}

// Get fetches the session's settings. Returns (nil, nil) when the session
// has never saved any or its entry expired.
func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, found := s.cache.Get(sessionID)
	if !found {
		return nil, nil
	}

	entry := val.(memoryEntry)
	if time.Now().After(entry.expiresAt) {
		s.cache.Remove(sessionID)
		return nil, nil
	}

	settings := entry.settings
	return &settings, nil
}

// Put saves the session's settings, refreshing the expiry.
func (s *MemoryStore) Put(ctx context.Context, sessionID string, settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Add(sessionID, memoryEntry{
		settings:  settings,
		expiresAt: time.Now().Add(s.ttl),
	})
	return nil
}

var _ domain.Store = (*MemoryStore)(nil)
