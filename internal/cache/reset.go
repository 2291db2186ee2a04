package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pixelcrate/pixelcrate-server/internal/model"
)

var _ model.ResetStore = (*Cache)(nil)

func resetKey(email string) string {
	return "reset:" + email
}

// SetCode stores a password reset code for email with the standard TTL.
// A repeated request overwrites the previous code and restarts the TTL.
func (c *Cache) SetCode(ctx context.Context, email string, code string) error {
	if err := c.client.Set(ctx, resetKey(email), code, model.ResetCodeDuration).Err(); err != nil {
		return fmt.Errorf("failed to set reset code: %w", err)
	}
	return nil
}

// GetCode returns the pending reset code for email, or ErrNotFound when
// none is pending or the TTL expired.
func (c *Cache) GetCode(ctx context.Context, email string) (string, error) {
	code, err := c.client.Get(ctx, resetKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", model.ErrNotFound
		}
		return "", fmt.Errorf("failed to get reset code: %w", err)
	}
	return code, nil
}

// Consume removes the pending reset code for email.
func (c *Cache) Consume(ctx context.Context, email string) error {
	if err := c.client.Del(ctx, resetKey(email)).Err(); err != nil {
		return fmt.Errorf("failed to consume reset code: %w", err)
	}
	return nil
}
