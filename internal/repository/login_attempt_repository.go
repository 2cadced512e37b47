package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const loginAttemptKeyPrefix = "auth:login_attempts:"

// LoginAttemptRepository counts login attempts per email since the last
// successful login, inside a fixed lockout window.
type LoginAttemptRepository interface {
	RecordAttempt(ctx context.Context, email string, window time.Duration) (int64, error)
	Reset(ctx context.Context, email string) error
}

type loginAttemptRepository struct {
	client *redis.Client
}

// NewLoginAttemptRepository returns a Redis-backed implementation.
func NewLoginAttemptRepository(client *redis.Client) LoginAttemptRepository {
	return &loginAttemptRepository{client: client}
}

// RecordAttempt increments the counter and returns the new count. INCR is
// atomic, so concurrent callers each see a distinct count. The window starts
// at the first attempt.
func (r *loginAttemptRepository) RecordAttempt(ctx context.Context, email string, window time.Duration) (int64, error) {
	key := loginAttemptKey(email)
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("record login attempt: %w", err)
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return count, fmt.Errorf("set login attempt window: %w", err)
		}
	}
	return count, nil
}

func (r *loginAttemptRepository) Reset(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, loginAttemptKey(email)).Err(); err != nil {
		return fmt.Errorf("reset login attempts: %w", err)
	}
	return nil
}

// loginAttemptKey keeps raw addresses out of Redis.
func loginAttemptKey(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return loginAttemptKeyPrefix + hex.EncodeToString(sum[:])
}
