package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Dan9191/advance-service/internal/models"
	"github.com/redis/go-redis/v9"
)

const guardPrefix = "repayments:run:v1:"

// Guard makes sure a business day is processed at most once
type Guard interface {
	// Acquire claims day. It returns false if the day was already claimed.
	Acquire(ctx context.Context, day time.Time, runID string) (bool, error)
}

// RedisGuard claims days with SETNX so several daemons can share one schedule
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisGuard creates a guard whose claims expire after ttl
func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	return &RedisGuard{client: client, ttl: ttl}
}

func (g *RedisGuard) Acquire(ctx context.Context, day time.Time, runID string) (bool, error) {
	ok, err := g.client.SetNX(ctx, guardPrefix+models.FormatDay(day), runID, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim repayment run: %w", err)
	}
	return ok, nil
}

// MemoryGuard claims days within a single process
type MemoryGuard struct {
	mu   sync.Mutex
	days map[string]string
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{days: make(map[string]string)}
}

func (g *MemoryGuard) Acquire(_ context.Context, day time.Time, runID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := models.FormatDay(day)
	if _, claimed := g.days[key]; claimed {
		return false, nil
	}
	g.days[key] = runID
	return true, nil
}

// NewRedisClient configures a Redis client and verifies connectivity.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, fmt.Errorf("redis url is required")
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}
