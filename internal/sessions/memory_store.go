package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coocood/freecache"
)

// MemoryStore keeps sessions in process, for single instance deployments
// and local development. Entries are evicted on ttl or when the cache is full.
type MemoryStore struct {
	cache *freecache.Cache
	ttl   time.Duration
}

func NewMemoryStore(sizeMB int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: freecache.NewCache(sizeMB * 1024 * 1024),
		ttl:   ttl,
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	raw, err := s.cache.Get([]byte(id))
	if err != nil {
		if errors.Is(err, freecache.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

func (s *MemoryStore) Save(_ context.Context, session *Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.cache.Set([]byte(session.ID), raw, s.expireSeconds()); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	if !s.cache.Del([]byte(id)) {
		return ErrSessionNotFound
	}
	return nil
}

// expireSeconds rounds the ttl up to whole seconds; 0 means no expiry.
func (s *MemoryStore) expireSeconds() int {
	if s.ttl <= 0 {
		return 0
	}
	return int((s.ttl + time.Second - 1) / time.Second)
}
