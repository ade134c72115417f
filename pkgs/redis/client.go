package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/raxhvl/genesix/config"
)

// NewRedisClient connects to Redis using the loaded settings and
// verifies connectivity before returning.
func NewRedisClient() (*redis.Client, error) {
	settings := config.SettingsObj

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", settings.RedisHost, settings.RedisPort),
		Password: settings.RedisPassword,
		DB:       settings.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.WithFields(log.Fields{
		"addr": fmt.Sprintf("%s:%s", settings.RedisHost, settings.RedisPort),
		"db":   settings.RedisDB,
	}).Info("Connected to Redis")

	return client, nil
}
