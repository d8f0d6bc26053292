package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultIdempotencyTTL bounds how long a key replays the order it created.
const DefaultIdempotencyTTL = 24 * time.Hour

const (
	// pendingOrder marks a key whose order is still being created.
	pendingOrder = "pending"
	// pendingTTL frees a reservation whose holder died before completing it.
	pendingTTL = time.Minute
)

// IdempotencyStore maps Idempotency-Key headers to order ids.
// Key format: idempotency:order:<key>
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore wraps client. A non-positive ttl uses DefaultIdempotencyTTL.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Reserve claims key with SETNX. The first caller wins; later callers get the
// order id the winner recorded, or "" while the winner is still pending.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (bool, string, error) {
	if key == "" {
		return false, "", errors.New("idempotency reserve: empty key")
	}
	k := s.key(key)

	// A second attempt covers the key expiring between SETNX and GET.
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.client.SetNX(ctx, k, pendingOrder, pendingTTL).Result()
		if err != nil {
			return false, "", fmt.Errorf("idempotency reserve: %w", err)
		}
		if ok {
			return true, "", nil
		}

		id, err := s.client.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return false, "", fmt.Errorf("idempotency reserve: %w", err)
		}
		if id == pendingOrder {
			return false, "", nil
		}
		return false, id, nil
	}
	return false, "", nil
}

// Complete stores orderID under key for the full ttl.
func (s *IdempotencyStore) Complete(ctx context.Context, key, orderID string) error {
	if err := s.client.Set(ctx, s.key(key), orderID, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency complete: %w", err)
	}
	return nil
}

// Release deletes key so that a retry may create the order.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(key string) string {
	return "idempotency:order:" + key
}
