package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ieraasyl/FavoritesService/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisDB wraps a Redis client used as the shared session store for
// multi-instance deployments. Session records are stored as hashes with a
// TTL matching the session lifetime.
//
// Key pattern: "session:{sessionID}"
type RedisDB struct {
	client *redis.Client
}

// NewRedisDB creates a Redis client and verifies the connection with a
// single ping.
//
// Example:
//
//	redisDB, err := database.NewRedisDB(&cfg.Redis)
//	if err != nil {
//	    log.Fatal().Err(err).Msg("Redis connection failed")
//	}
//	defer redisDB.Close()
func NewRedisDB(cfg *config.RedisConfig) (*RedisDB, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info().Str("addr", cfg.Address()).Msg("Successfully connected to Redis")

	return &RedisDB{client: client}, nil
}

// Close closes the Redis connection.
func (r *RedisDB) Close() error {
	return r.client.Close()
}

// Ping checks if Redis is alive. Used by /ready.
func (r *RedisDB) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// SetSession stores a session record as a hash and sets its expiry in the
// same MULTI/EXEC block, so a record never exists without a TTL.
//
// Example:
//
//	err := redisDB.SetSession(ctx, sessionID, map[string]string{
//	    "user_id":      "141981764",
//	    "display_name": "TwitchDev",
//	}, 24*time.Hour)
func (r *RedisDB) SetSession(ctx context.Context, sessionID string, fields map[string]string, expiry time.Duration) error {
	key := sessionKey(sessionID)

	values := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		values[k] = v
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, values)
		pipe.Expire(ctx, key, expiry)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	return nil
}

// GetSession returns the stored fields for sessionID, or ErrNotFound when
// the session does not exist or has expired.
func (r *RedisDB) GetSession(ctx context.Context, sessionID string) (map[string]string, error) {
	result, err := r.client.HGetAll(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return result, nil
}

// DeleteSession removes a session. Deleting a missing session is not an
// error.
func (r *RedisDB) DeleteSession(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}
