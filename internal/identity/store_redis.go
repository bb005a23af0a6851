// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/refera/internal/platform/constants"
)

// RedisSessionRegistry implements SessionRegistry using Redis. The entry TTL
// mirrors the artifact TTL, so the registry self-cleans.
type RedisSessionRegistry struct {
	client *redis.Client
}

// NewSessionRegistry creates a new Redis-backed SessionRegistry.
func NewSessionRegistry(client *redis.Client) *RedisSessionRegistry {
	return &RedisSessionRegistry{client: client}
}

func sessionKey(sessionID string) string {
	return constants.RedisPrefixSession + sessionID
}

func (registry *RedisSessionRegistry) Put(ctx context.Context, sessionID, subjectID string, ttl time.Duration) error {
	if err := registry.client.Set(ctx, sessionKey(sessionID), subjectID, ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_registry_put_failed: %w", err)
	}
	return nil
}

func (registry *RedisSessionRegistry) IsActive(ctx context.Context, sessionID string) (bool, error) {
	_, err := registry.client.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis_session_registry_get_failed: %w", err)
	}
	return true, nil
}

func (registry *RedisSessionRegistry) Revoke(ctx context.Context, sessionID string) error {
	if err := registry.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis_session_registry_del_failed: %w", err)
	}
	return nil
}
