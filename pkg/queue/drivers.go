package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// MemoryDriver is a buffered channel. Jobs live only as long as the
// process, which suits development, tests and single-binary deployments.
type MemoryDriver struct {
	ch chan []byte
}

// NewMemoryDriver buffers up to 1000 jobs; Push blocks beyond that.
func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{ch: make(chan []byte, 1000)}
}

func (d *MemoryDriver) Push(ctx context.Context, payload []byte) error {
	select {
	case d.ch <- payload:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *MemoryDriver) Pop(ctx context.Context) ([]byte, error) {
	select {
	case payload := <-d.ch:
		return payload, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (d *MemoryDriver) Size(context.Context) (int64, error) { return int64(len(d.ch)), nil }

// RedisKey is the list the Redis driver pushes to and pops from.
const RedisKey = "ayoo:queue:jobs"

// RedisDriver keeps jobs in a Redis list so any process running
// `ayoo queue:work` can take them. Jobs are pushed on the left and popped
// from the right, oldest first.
type RedisDriver struct {
	rdb  *redis.Client
	wait time.Duration
}

// NewRedisDriver shares the client used by pkg/cache. Pop waits up to five
// seconds per call so workers notice cancellation.
func NewRedisDriver(rdb *redis.Client) *RedisDriver {
	return &RedisDriver{rdb: rdb, wait: 5 * time.Second}
}

func (d *RedisDriver) Push(ctx context.Context, payload []byte) error {
	if err := d.rdb.LPush(ctx, RedisKey, payload).Err(); err != nil {
		return fmt.Errorf("queue: redis push: %w", err)
	}
	return nil
}

func (d *RedisDriver) Pop(ctx context.Context) ([]byte, error) {
	kv, err := d.rdb.BRPop(ctx, d.wait, RedisKey).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("queue: redis pop: %w", err)
	case len(kv) != 2:
		return nil, nil
	}
	return []byte(kv[1]), nil
}

func (d *RedisDriver) Size(ctx context.Context) (int64, error) {
	n, err := d.rdb.LLen(ctx, RedisKey).Result()
	if err != nil {
		return 0, fmt.Errorf("queue: redis size: %w", err)
	}
	return n, nil
}
