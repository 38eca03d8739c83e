// Copyright (c) 2026 References. All rights reserved.
// Author: hiroto333

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hiroto333/references/internal/platform/constants"
)

// # Guest Registry

// RedisGuestRegistry implements GuestRegistry using Redis.
//
// One key per live guest, value is the creation timestamp. The TTL acts as
// the safety net: if the cleanup beacon never fires, the entry expires on
// its own and a background reaper can treat the account as abandoned.
type RedisGuestRegistry struct {
	client *redis.Client
}

// NewGuestRegistry creates a new Redis-backed GuestRegistry.
func NewGuestRegistry(client *redis.Client) *RedisGuestRegistry {
	return &RedisGuestRegistry{client: client}
}

func guestKey(userID string) string {
	return constants.RedisPrefixGuest + userID
}

/*
Register records a freshly created guest account with its TTL.

Parameters:
  - context: context.Context
  - userID: string
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (registry *RedisGuestRegistry) Register(context context.Context, userID string, ttl time.Duration) error {
	value := time.Now().UTC().Format(time.RFC3339)
	if err := registry.client.Set(context, guestKey(userID), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis_guest_registry_set_failed: %w", err)
	}
	return nil
}

/*
Exists reports whether the guest account is still registered.

Description: A missing key simply means the guest was cleaned up or aged
out; it is not an error.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - bool: True while the registry entry is alive
  - error: Connectivity errors
*/
func (registry *RedisGuestRegistry) Exists(context context.Context, userID string) (bool, error) {
	_, err := registry.client.Get(context, guestKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis_guest_registry_get_failed: %w", err)
	}
	return true, nil
}

/*
Remove drops the registry entry after a completed cleanup.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Deletion failures
*/
func (registry *RedisGuestRegistry) Remove(context context.Context, userID string) error {
	if err := registry.client.Del(context, guestKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis_guest_registry_delete_failed: %w", err)
	}
	return nil
}
