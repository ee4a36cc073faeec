package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/webinsights/webinsights/internal/core"
)

// maxIDAttempts bounds the SetNX retry loop. UUIDv4 collisions are
// effectively impossible, so more than one iteration indicates a broken
// id source rather than bad luck.
const maxIDAttempts = 3

// Sessions persists analysis sessions in the shared store. Sessions are
// write-once: Create never overwrites an existing id, and no update or
// delete is exposed. Expiry is the store TTL.
type Sessions struct {
	store *Store
	ttl   time.Duration
}

// NewSessions returns a session manager writing records with the given TTL.
func NewSessions(s *Store, ttl time.Duration) *Sessions {
	return &Sessions{store: s, ttl: ttl}
}

// Create writes {url, analysis} under a freshly generated session id and
// returns the id.
func (s *Sessions) Create(ctx context.Context, url string, analysis core.AnalysisResult) (string, error) {
	payload, err := json.Marshal(core.Session{URL: url, Analysis: analysis})
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := uuid.NewString()

		created, err := s.store.rdb.SetNX(ctx, id, payload, s.ttl).Result()
		if err != nil {
			return "", fmt.Errorf("write session: %w", err)
		}
		if created {
			return id, nil
		}
	}

	return "", errors.New("could not allocate a unique session id")
}

// Get reads the session under id. A missing or expired id yields
// core.ErrSessionNotFound; a present but undecodable payload yields
// core.ErrSessionCorrupted.
func (s *Sessions) Get(ctx context.Context, id string) (*core.Session, error) {
	raw, err := s.store.rdb.Get(ctx, id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var session core.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSessionCorrupted, err)
	}

	return &session, nil
}
