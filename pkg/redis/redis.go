package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/omsapp/oms-backend/config"
	"github.com/omsapp/oms-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"addr": cfg.Addr(),
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"addr": cfg.Addr(),
		})
		_ = client.Close()
		client = nil
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully")
	return nil
}

// GetClient returns the Redis client instance, nil before Init succeeds
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection")
		return client.Close()
	}
	return nil
}

const resetCooldownPrefix = "reset-cooldown:"

// ResetCooldown allows one forgot-password request per address within the window
type ResetCooldown struct {
	client *redis.Client
	window time.Duration
}

func NewResetCooldown(client *redis.Client, window time.Duration) *ResetCooldown {
	return &ResetCooldown{client: client, window: window}
}

// Allow claims the cooldown slot for email. It reports false while an earlier claim is live.
func (c *ResetCooldown) Allow(ctx context.Context, email string) (bool, error) {
	if c.window <= 0 {
		return true, nil
	}

	ok, err := c.client.SetNX(ctx, cooldownKey(email), "1", c.window).Result()
	if err != nil {
		logger.Error("Failed to claim reset cooldown", err)
		return false, err
	}
	return ok, nil
}

// cooldownKey keeps addresses out of the keyspace
func cooldownKey(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return resetCooldownPrefix + hex.EncodeToString(sum[:])
}
