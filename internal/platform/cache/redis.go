package cache

import (
	"context"
	"errors"
	"log"
	"time"

	"classtrack/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

func ConnectRedis() {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	ctx := context.Background()
	if _, err := RDB.Ping(ctx).Result(); err != nil {
		log.Fatalf("Could not connect to Redis: %v", err)
	}
}

func CloseRedis() {
	if RDB != nil {
		RDB.Close()
	}
}

const revokedKeyPrefix = "revoked:"

// RevokeToken marks a token id as revoked until its natural expiry.
func RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if RDB == nil {
		return errors.New("redis client not initialised")
	}
	return RDB.Set(ctx, revokedKeyPrefix+tokenID, 1, ttl).Err()
}

// IsTokenRevoked reports whether a token id has been revoked. With no redis
// client configured, no token is considered revoked.
func IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	if RDB == nil {
		return false, nil
	}
	n, err := RDB.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
