package applicationinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/meridian-hr/funnel/pkg/kernel"
)

// idempotencyKeyPrefix namespaces submission request ids in the shared
// redis instance.
const idempotencyKeyPrefix = "funnel:idempotency:application:"

// RedisIdempotencyStore implements application.IdempotencyStore with SETNX
// and a TTL window. The window slides per request id: each id lives exactly
// one window from its first claim.
type RedisIdempotencyStore struct {
	client *redis.Client
	window time.Duration
}

// NewRedisIdempotencyStore creates a redis-backed idempotency store.
func NewRedisIdempotencyStore(client *redis.Client, window time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{
		client: client,
		window: window,
	}
}

// Claim reserves requestID for applicationID. Losing the SETNX race means
// another request already owns the id; the stored application id is
// returned so the caller can short-circuit.
func (s *RedisIdempotencyStore) Claim(ctx context.Context, requestID string, applicationID kernel.ApplicationID) (kernel.ApplicationID, bool, error) {
	key := idempotencyKeyPrefix + requestID

	// Two rounds cover the edge where the key expires between a lost
	// SETNX and the follow-up GET.
	for attempt := 0; attempt < 2; attempt++ {
		set, err := s.client.SetNX(ctx, key, applicationID.String(), s.window).Result()
		if err != nil {
			return "", false, fmt.Errorf("failed to claim request id: %w", err)
		}
		if set {
			return applicationID, true, nil
		}

		stored, err := s.client.Get(ctx, key).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("failed to read claimed request id: %w", err)
		}
		return kernel.ApplicationID(stored), false, nil
	}

	return "", false, fmt.Errorf("request id claim raced with expiry: %s", requestID)
}

// Release drops a claim so a retry after a failed submit starts fresh.
func (s *RedisIdempotencyStore) Release(ctx context.Context, requestID string) error {
	if err := s.client.Del(ctx, idempotencyKeyPrefix+requestID).Err(); err != nil {
		return fmt.Errorf("failed to release request id: %w", err)
	}
	return nil
}
