package cache

import (
	"context"
	"fmt"
	"time"

	"staff_sync_backend/pkg/utils"

	"github.com/go-redis/redis/v8"
)

// KeyPrefix namespaces every key this service writes.
const KeyPrefix = "staffsync:"

// InitRedis opens a client and verifies the connection.
func InitRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	utils.LogInfo("Redis connected successfully", map[string]interface{}{"addr": addr, "db": db})
	return client, nil
}
