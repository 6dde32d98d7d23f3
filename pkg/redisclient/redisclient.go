package redisclient

import (
	"context"

	"github.com/itinera/itinera/pkg/config"
	"github.com/redis/go-redis/v9"
)

var Client *redis.Client

func Connect(redisConfig config.RedisConfig) error {
	Client = redis.NewClient(&redis.Options{
		Addr:     redisConfig.Address,
		Password: redisConfig.Password,
		DB:       redisConfig.Database,
	})

	statusCmd := Client.Ping(context.Background())

	return statusCmd.Err()
}
