package config

import (
	"context"

	"Impostor/services/redis"

	"github.com/rs/zerolog/log"
)

// ConnectRedis opens the ballot ledger connection.
func ConnectRedis(ctx context.Context, cfg *Config) (*redis.RedisClient, error) {
	log.Debug().Str("addr", cfg.RedisURL).Msg("connecting to Redis")
	redisClient, err := redis.InitRedis(ctx, cfg.RedisURL, 0, cfg.VoteTTL)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("Redis connection established")
	return redisClient, nil
}
