package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"wasgeurtjeInsights/domain"

	"github.com/redis/go-redis/v9"
)

type ProfileCache struct {
	client *redis.Client
}

func NewProfileCache(client *redis.Client) *ProfileCache {
	return &ProfileCache{
		client: client,
	}
}

// key format: "profile:email:{email}"
func profileKey(email string) string {
	return fmt.Sprintf("profile:email:%s", email)
}

// Get returns the cached profile or nil on a miss. Any redis failure is
// returned to the caller, which treats it as a miss.
func (c *ProfileCache) Get(ctx context.Context, email string) (*domain.CustomerProfile, error) {
	val, err := c.client.Get(ctx, profileKey(email)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile from Redis: %w", err)
	}

	var profile domain.CustomerProfile
	if err := json.Unmarshal([]byte(val), &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached profile: %w", err)
	}

	return &profile, nil
}

func (c *ProfileCache) Set(ctx context.Context, profile domain.CustomerProfile, ttl time.Duration) error {
	jsonData, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	if err := c.client.Set(ctx, profileKey(profile.Email), jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store profile in Redis: %w", err)
	}

	return nil
}

func (c *ProfileCache) Invalidate(ctx context.Context, email string) error {
	if err := c.client.Del(ctx, profileKey(email)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached profile: %w", err)
	}

	return nil
}
