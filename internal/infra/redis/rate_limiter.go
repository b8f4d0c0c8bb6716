package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/QuagHug/pet-service/internal/domain/ports/adapter"
)

var _ adapter.RateLimiter = (*RateLimiter)(nil)

type RateLimiter struct {
	client *Client
}

func NewRateLimiter(client *Client) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	if count == 1 {
		err = r.client.Expire(ctx, key, window)
		if err != nil {
			return false, err
		}
	}

	if count > int64(limit) {
		return false, nil
	}

	return true, nil
}

// PaymentInitKey throttles how often one user can start a payment.
func PaymentInitKey(userID string) string {
	return fmt.Sprintf("rate_limit:payment_init:%s", userID)
}

// LoginKey throttles login attempts per email.
func LoginKey(email string) string {
	return fmt.Sprintf("rate_limit:login:%s", email)
}
