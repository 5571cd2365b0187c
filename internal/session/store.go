package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/mbeaudry/latecheck-service/internal/forecast"
	"github.com/mbeaudry/latecheck-service/internal/gtfs"
)

// ErrNoPrediction is returned by Get when the session has no stored
// prediction, including when the store runs without Redis.
var ErrNoPrediction = errors.New("no prediction stored for session")

// Record is the last prediction made in a session, kept so the page can
// re-render it across interactions.
type Record struct {
	Route    gtfs.Route        `json:"route"`
	Estimate forecast.Estimate `json:"estimate"`
}

// Store keeps the most recent prediction per session in Redis. A nil client
// disables persistence: Put becomes a no-op and Get always misses. Sessions
// are independent; there is no cross-session state.
type Store struct {
	rc  *redis.Client
	ttl time.Duration
}

func New(rc *redis.Client, ttl time.Duration) *Store {
	return &Store{rc: rc, ttl: ttl}
}

func (s *Store) Put(ctx context.Context, sessionID string, rec Record) error {
	if s.rc == nil {
		return nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session record: %w", err)
	}
	return s.rc.Set(ctx, key(sessionID), data, s.ttl).Err()
}

func (s *Store) Get(ctx context.Context, sessionID string) (*Record, error) {
	if s.rc == nil {
		return nil, ErrNoPrediction
	}
	val, err := s.rc.Get(ctx, key(sessionID)).Result()
	if err == redis.Nil {
		return nil, ErrNoPrediction
	}
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal session record: %w", err)
	}
	return &rec, nil
}

func key(sessionID string) string {
	return "latecheck:session:" + sessionID
}
