package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// AttemptLimiter counts failed sign-ins per identifier inside a window.
type AttemptLimiter interface {
	Blocked(ctx context.Context, identifier string) (bool, error)
	RecordFailure(ctx context.Context, identifier string) error
	Reset(ctx context.Context, identifier string) error
}

type redisAttemptLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
}

// NewAttemptLimiter returns a Redis backed limiter, or one that never blocks
// when client is nil.
func NewAttemptLimiter(client *redis.Client, max int, window time.Duration) AttemptLimiter {
	if client == nil {
		return noopLimiter{}
	}
	return &redisAttemptLimiter{client: client, max: max, window: window}
}

func failedKey(identifier string) string {
	return fmt.Sprintf("failed:%s", identifier)
}

func (l *redisAttemptLimiter) Blocked(ctx context.Context, identifier string) (bool, error) {
	n, err := l.client.Get(ctx, failedKey(identifier)).Int()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return n >= l.max, nil
}

// RecordFailure bumps the counter. The window starts at the first failure.
func (l *redisAttemptLimiter) RecordFailure(ctx context.Context, identifier string) error {
	key := failedKey(identifier)
	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if n == 1 {
		return l.client.Expire(ctx, key, l.window).Err()
	}
	return nil
}

func (l *redisAttemptLimiter) Reset(ctx context.Context, identifier string) error {
	return l.client.Del(ctx, failedKey(identifier)).Err()
}

type noopLimiter struct{}

func (noopLimiter) Blocked(context.Context, string) (bool, error) { return false, nil }
func (noopLimiter) RecordFailure(context.Context, string) error  { return nil }
func (noopLimiter) Reset(context.Context, string) error          { return nil }
