package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/johnquangdev/meeting-recorder/pkg/config"
)

// SnapshotStore holds the latest live transcript snapshot per bot
type SnapshotStore interface {
	SetSnapshot(ctx context.Context, botID string, text string) error
	GetSnapshot(ctx context.Context, botID string) (string, bool, error)
	DeleteSnapshot(ctx context.Context, botID string) error
}

// NewRedisClient creates and pings a Redis client
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Println("✅ Redis connected successfully")

	return client, nil
}

// RedisSnapshotStore stores snapshots in Redis with a TTL
type RedisSnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSnapshotStore creates a Redis-backed snapshot store
func NewRedisSnapshotStore(client *redis.Client, ttl time.Duration) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client, ttl: ttl}
}

func snapshotKey(botID string) string {
	return "transcript:snapshot:" + botID
}

// SetSnapshot stores the latest snapshot for a bot, refreshing the TTL
func (s *RedisSnapshotStore) SetSnapshot(ctx context.Context, botID string, text string) error {
	return s.client.Set(ctx, snapshotKey(botID), text, s.ttl).Err()
}

// GetSnapshot retrieves the latest snapshot for a bot
func (s *RedisSnapshotStore) GetSnapshot(ctx context.Context, botID string) (string, bool, error) {
	val, err := s.client.Get(ctx, snapshotKey(botID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return val, true, nil
}

// DeleteSnapshot removes the snapshot for a bot
func (s *RedisSnapshotStore) DeleteSnapshot(ctx context.Context, botID string) error {
	return s.client.Del(ctx, snapshotKey(botID)).Err()
}
