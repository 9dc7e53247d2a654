// Package redisdedup implements event deduplication on Redis. A keyed TTL
// mark shared across consumer instances lets any of them recognise an event
// that was already processed.
package redisdedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// defaultWindow is how long a processed event id blocks duplicates. Longer
// than the upstream's redelivery horizon, short enough to keep the keyspace
// small.
const defaultWindow = 24 * time.Hour

// Store tracks processed event ids in Redis.
type Store struct {
	client *redis.Client
	window time.Duration
}

// NewStore creates a dedup store. A non-positive window falls back to the
// default 24h.
func NewStore(client *redis.Client, window time.Duration) *Store {
	if window <= 0 {
		window = defaultWindow
	}
	return &Store{client: client, window: window}
}

// Seen reports whether the event id was marked processed inside the window.
func (s *Store) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("redisdedup: exists: %w", err)
	}
	return n > 0, nil
}

// MarkProcessed records the event id for the window.
func (s *Store) MarkProcessed(ctx context.Context, eventID string) error {
	if err := s.client.Set(ctx, s.key(eventID), 1, s.window).Err(); err != nil {
		return fmt.Errorf("redisdedup: set: %w", err)
	}
	return nil
}

func (s *Store) key(eventID string) string {
	return "dedup:event:" + eventID
}
