// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trankieu/medora/internal/platform/constants"
)

// # Redis Revocation Store

// revokedValue is the sentinel stored under a revoked key. Only key presence
// matters; the value is never read.
const revokedValue = "1"

// RedisRevocationRepository implements RevocationRepository on Redis.
//
// Keys follow the pattern "auth:revoked:<jti>" and carry a TTL equal to the
// token's remaining lifetime, so Redis evicts each entry exactly when the
// token would have expired on its own. No sweeper process is needed.
type RedisRevocationRepository struct {
	client *redis.Client
}

// NewRedisRevocationRepository creates the Redis-backed revocation store.
func NewRedisRevocationRepository(client *redis.Client) *RedisRevocationRepository {
	return &RedisRevocationRepository{client: client}
}

// Put marks a token identifier revoked until its natural expiry.
// SET overwrites an existing entry, which makes repeated revocation a no-op.
func (repo *RedisRevocationRepository) Put(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	key := constants.RedisPrefixRevoked + tokenID
	if err := repo.client.Set(ctx, key, revokedValue, ttl).Err(); err != nil {
		return fmt.Errorf("auth_revocation_put_failed: %w", err)
	}
	return nil
}

// Exists reports whether a token identifier is currently revoked.
func (repo *RedisRevocationRepository) Exists(ctx context.Context, tokenID string) (bool, error) {
	key := constants.RedisPrefixRevoked + tokenID
	count, err := repo.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("auth_revocation_lookup_failed: %w", err)
	}
	return count > 0, nil
}
