package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	keys "github.com/raxhvl/genesix/pkgs/redis"
)

// RedisStore persists progress records in Redis, one key per player,
// namespaced by chain.
type RedisStore struct {
	client     *redis.Client
	keyBuilder *keys.KeyBuilder
}

// NewRedisStore creates a Redis-backed progress store for a chain.
func NewRedisStore(client *redis.Client, chainID int64) *RedisStore {
	return &RedisStore{
		client:     client,
		keyBuilder: keys.NewKeyBuilder(chainID),
	}
}

func (rs *RedisStore) Load(ctx context.Context, playerAddr string) (State, bool, error) {
	data, err := rs.client.Get(ctx, rs.keyBuilder.PlayerProgress(playerAddr)).Result()
	if errors.Is(err, redis.Nil) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("failed to load progress record: %w", err)
	}

	var st State
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		log.WithError(err).WithField("player", playerAddr).Warn("Corrupt progress record, falling back to defaults")
		return State{}, false, nil
	}

	return st, true, nil
}

func (rs *RedisStore) Save(ctx context.Context, playerAddr string, st State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal progress record: %w", err)
	}

	if err := rs.client.Set(ctx, rs.keyBuilder.PlayerProgress(playerAddr), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store progress record: %w", err)
	}

	return nil
}
