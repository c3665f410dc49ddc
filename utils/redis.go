package utils

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/grcworks/requirement-gathering-backend/config"
)

var (
	redisClient *redis.Client
	redisCtx    = context.Background()
)

// InitRedis connects the shared client used for short-lived tokens.
func InitRedis(cfg *config.Config) error {
	addr := cfg.RedisAddr
	if addr == "" {
		addr = "localhost:6379"
	}

	redisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := redisClient.Ping(redisCtx).Err(); err != nil {
		return err
	}

	log.Printf("✅ Connected to Redis at %s", addr)
	return nil
}

// SetToken stores a value with a TTL.
func SetToken(key, value string, ttl time.Duration) error {
	if redisClient == nil {
		return errors.New("redis not initialized")
	}
	return redisClient.Set(redisCtx, key, value, ttl).Err()
}

// GetToken fetches a stored value; a missing key is an error.
func GetToken(key string) (string, error) {
	if redisClient == nil {
		return "", errors.New("redis not initialized")
	}
	return redisClient.Get(redisCtx, key).Result()
}

// DeleteToken removes a key.
func DeleteToken(key string) error {
	if redisClient == nil {
		return errors.New("redis not initialized")
	}
	return redisClient.Del(redisCtx, key).Err()
}
