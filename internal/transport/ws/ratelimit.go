package ws

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisBackend is the subset of *redis.Client RateLimiter depends on, so
// tests can substitute a fake without a live Redis instance. Narrows
// go-redis to a small interface rather than passing redis.UniversalClient
// around everywhere.
type redisBackend interface {
	IncrBy(ctx context.Context, key string, value int64) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RateLimiter enforces a per-connection contract: at most N messages
// per second, and cumulative audio bytes bounded per window. Counters
// live in Redis so limits hold across a horizontally scaled,
// multi-instance deployment rather than per-process, consistent with
// the distributed session-store approach.
type RateLimiter struct {
	backend        redisBackend
	maxMessagesSec int64
	maxAudioBytes  int64
	audioWindow    time.Duration
	messageWindow  time.Duration
}

// NewRateLimiter builds a RateLimiter. maxMessagesSec bounds message
// count per one-second window; maxAudioBytes bounds cumulative audio
// bytes per audioWindow.
func NewRateLimiter(client *redis.Client, maxMessagesSec int, maxAudioBytes int64, audioWindow time.Duration) *RateLimiter {
	return &RateLimiter{
		backend:        client,
		maxMessagesSec: int64(maxMessagesSec),
		maxAudioBytes:  maxAudioBytes,
		audioWindow:    audioWindow,
		messageWindow:  time.Second,
	}
}

// AllowMessage increments the connection's message counter for the
// current one-second window and reports whether the connection is still
// within its message-rate budget.
func (r *RateLimiter) AllowMessage(ctx context.Context, connID string) (bool, error) {
	window := time.Now().Unix()
	key := fmt.Sprintf("ws:rl:msg:%s:%d", connID, window)
	return r.allow(ctx, key, r.maxMessagesSec, 1, r.messageWindow)
}

// AllowAudioBytes increments the connection's cumulative audio-byte
// counter for the current window and reports whether the connection is
// still within its audio-byte budget.
func (r *RateLimiter) AllowAudioBytes(ctx context.Context, connID string, n int) (bool, error) {
	window := time.Now().Unix() / int64(r.audioWindow/time.Second)
	key := fmt.Sprintf("ws:rl:audio:%s:%d", connID, window)
	return r.allow(ctx, key, r.maxAudioBytes, int64(n), r.audioWindow)
}

// allow is a fixed-window counter: INCRBY then, on the increment that
// creates the key, set its expiry to window so stale counters don't
// accumulate. Returns false (without error) once count exceeds limit;
// callers drop the offending frame and emit an Error. Violations do not
// terminate the connection.
func (r *RateLimiter) allow(ctx context.Context, key string, limit, incrBy int64, window time.Duration) (bool, error) {
	count, err := r.backend.IncrBy(ctx, key, incrBy).Result()
	if err != nil {
		return false, err
	}
	if count == incrBy {
		if err := r.backend.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return count <= limit, nil
}
