package secrets

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const secretKeyPrefix = "secret:"

// RedisRegistry persists secrets in Redis so the name-encryption key survives
// process restarts and is shared across replicas. Values are stored
// base64-encoded.
type RedisRegistry struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed secret registry.
func NewRedis(client *redis.Client) *RedisRegistry {
	return &RedisRegistry{client: client}
}

func (r *RedisRegistry) GetSecretBytes(ctx context.Context, name string) ([]byte, bool, error) {
	encoded, err := r.client.Get(ctx, secretKeyPrefix+name).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get secret %q: %w", name, err)
	}

	value, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, false, fmt.Errorf("decode secret %q: %w", name, err)
	}
	return value, true, nil
}

func (r *RedisRegistry) SetSecretBytes(ctx context.Context, name string, value []byte) error {
	encoded := base64.StdEncoding.EncodeToString(value)
	// No TTL: secrets live for the deployment lifetime.
	if err := r.client.Set(ctx, secretKeyPrefix+name, encoded, 0).Err(); err != nil {
		return fmt.Errorf("set secret %q: %w", name, err)
	}
	return nil
}
