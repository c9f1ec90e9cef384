// Package redis caches session snapshots so that a restarted server can
// restore in-flight sessions without a database round trip.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fable-engine/fable/internal/game/player"
)

// ErrSnapshotNotFound is returned when no snapshot exists for a session ID.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotCache stores player state keyed by session ID with a TTL.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewSnapshotCache creates a cache backed by the Redis server at addr.
//
// Precondition: addr must be a reachable "host:port"; ttl must be positive;
// logger must be non-nil.
func NewSnapshotCache(addr string, ttl time.Duration, logger *zap.Logger) *SnapshotCache {
	client := redis.NewClient(&redis.Options{Addr: addr})
	return &SnapshotCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// NewSnapshotCacheWithClient creates a cache on an existing client.
// Tests use this to point the cache at a fake server.
func NewSnapshotCacheWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *SnapshotCache {
	return &SnapshotCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func snapshotKey(sessionID string) string {
	return "session:" + sessionID + ":state"
}

// Ping checks that the Redis server is reachable.
func (c *SnapshotCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Store writes the session's state, resetting the TTL.
//
// Precondition: sessionID must be non-empty; st must be non-nil.
// Postcondition: The snapshot is readable via Load until the TTL expires.
func (c *SnapshotCache) Store(ctx context.Context, sessionID string, st *player.State) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if err := c.client.Set(ctx, snapshotKey(sessionID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("storing snapshot: %w", err)
	}

	c.logger.Debug("snapshot stored",
		zap.String("session_id", sessionID),
		zap.Int("bytes", len(payload)),
	)
	return nil
}

// Load reads the session's state.
//
// Postcondition: Returns the snapshot, or ErrSnapshotNotFound if none exists.
func (c *SnapshotCache) Load(ctx context.Context, sessionID string) (*player.State, error) {
	payload, err := c.client.Get(ctx, snapshotKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	st := &player.State{}
	if err := json.Unmarshal(payload, st); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return st, nil
}

// Delete removes the session's snapshot. Deleting a missing snapshot is not
// an error.
func (c *SnapshotCache) Delete(ctx context.Context, sessionID string) error {
	if err := c.client.Del(ctx, snapshotKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (c *SnapshotCache) Close() error {
	return c.client.Close()
}
