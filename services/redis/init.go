package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisClient handles Redis operations
type RedisClient struct {
	client  *redis.Client
	voteTTL time.Duration
}

// NewRedisClient creates a new Redis client instance. Anything other than
// the default local address is parsed as a redis:// URL.
func NewRedisClient(addr string, db int, voteTTL time.Duration) (*RedisClient, error) {
	var client *redis.Client
	if addr != "localhost:6379" {
		log.Info().Msg("connecting to remote Redis...")
		opt, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("error parsing Redis URL: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		})
	}
	return Wrap(client, voteTTL), nil
}

// Wrap builds a RedisClient around an existing connection.
func Wrap(client *redis.Client, voteTTL time.Duration) *RedisClient {
	return &RedisClient{client: client, voteTTL: voteTTL}
}

// InitRedis connects and pings the server.
func InitRedis(ctx context.Context, addr string, db int, voteTTL time.Duration) (*RedisClient, error) {
	rc, err := NewRedisClient(addr, db, voteTTL)
	if err != nil {
		return nil, err
	}

	if err := rc.client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info().Msg("successfully connected to Redis")
	return rc, nil
}

// CloseRedis gracefully closes the Redis connection
func CloseRedis(rc *RedisClient) error {
	if err := rc.client.Close(); err != nil {
		return fmt.Errorf("error closing Redis connection: %w", err)
	}
	return nil
}
