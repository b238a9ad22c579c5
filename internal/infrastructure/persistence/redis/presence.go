// Package redis implements realtime presence tracking for Scribe Connect
// Vision. Presence is kept in TTL-guarded keys so that a crashed process
// never leaves users stuck online.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
	"github.com/prasadk1999/scribe-connect-vision/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds Redis connection configuration.
type Config struct {
	// Host is the Redis server hostname.
	Host string

	// Port is the Redis server port.
	Port int

	// Password is the Redis authentication password (empty if no auth).
	Password string

	// DB is the Redis database number (0-15).
	DB int

	// PoolSize is the maximum number of socket connections.
	PoolSize int

	// DialTimeout is the timeout for establishing new connections.
	DialTimeout time.Duration

	// PresenceTTL is how long a presence key lives without renewal.
	PresenceTTL time.Duration
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Host:        "localhost",
		Port:        6379,
		DB:          0,
		PoolSize:    10,
		DialTimeout: 5 * time.Second,
		PresenceTTL: 5 * time.Minute,
	}
}

// Addr returns the Redis address in "host:port" format.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// PRESENCE TRACKER
// Implements user.PresenceTracker over Redis string keys with TTL.
// ══════════════════════════════════════════════════════════════════════════════

const presenceKeyPrefix = "presence:user:"

// PresenceTracker tracks which users currently hold a realtime connection.
type PresenceTracker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPresenceTracker connects to Redis and returns a tracker. The initial
// ping is retried with backoff since Redis may still be starting up.
func NewPresenceTracker(ctx context.Context, cfg Config) (*PresenceTracker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: cfg.DialTimeout,
	})

	if err := retry.Do(ctx, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	ttl := cfg.PresenceTTL
	if ttl <= 0 {
		ttl = DefaultConfig().PresenceTTL
	}
	return &PresenceTracker{client: client, ttl: ttl}, nil
}

// Close releases the underlying Redis client.
func (t *PresenceTracker) Close() error {
	return t.client.Close()
}

// Ping checks the Redis connection.
func (t *PresenceTracker) Ping(ctx context.Context) error {
	return t.client.Ping(ctx).Err()
}

func presenceKey(id shared.UserID) string {
	return presenceKeyPrefix + id.String()
}

// MarkOnline marks the user as connected. The key expires on its own if the
// process dies before MarkOffline runs.
func (t *PresenceTracker) MarkOnline(ctx context.Context, id shared.UserID) error {
	return t.client.Set(ctx, presenceKey(id), time.Now().UTC().Format(time.RFC3339), t.ttl).Err()
}

// MarkOffline marks the user as disconnected.
func (t *PresenceTracker) MarkOffline(ctx context.Context, id shared.UserID) error {
	return t.client.Del(ctx, presenceKey(id)).Err()
}

// IsOnline reports whether the user currently holds a connection.
func (t *PresenceTracker) IsOnline(ctx context.Context, id shared.UserID) (bool, error) {
	n, err := t.client.Exists(ctx, presenceKey(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// OnlineStates returns per-user presence for a batch of users using a
// single MGET round trip.
func (t *PresenceTracker) OnlineStates(ctx context.Context, ids []shared.UserID) (map[shared.UserID]bool, error) {
	if len(ids) == 0 {
		return map[shared.UserID]bool{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, presenceKey(id))
	}

	values, err := t.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	states := make(map[shared.UserID]bool, len(ids))
	for i, id := range ids {
		states[id] = values[i] != nil
	}
	return states, nil
}
