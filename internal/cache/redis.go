// Package cache layers Redis in front of the slower listing queries.
package cache

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"quayside/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// client is nil whenever Redis is unreachable; callers fall through to the
// underlying fetch in that case.
var client *redis.Client

// errorCountHook bumps the Redis error counter on every failed command.
// redis.Nil is a cache miss, not an error.
type errorCountHook struct{}

func (errorCountHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (errorCountHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (errorCountHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// clientOptions accepts either a full redis:// URL or a bare host:port.
func clientOptions(addr string) (*redis.Options, error) {
	if strings.Contains(addr, "://") {
		return redis.ParseURL(addr)
	}
	return &redis.Options{Addr: addr}, nil
}

// InitRedis connects to Redis at the given address. A failed connection is
// logged and leaves the cache disabled rather than aborting startup.
func InitRedis(addr string) {
	opts, err := clientOptions(addr)
	if err != nil {
		log.Printf("Redis disabled: invalid REDIS_URL %q: %v", addr, err)
		client = nil
		return
	}

	c := redis.NewClient(opts)
	c.AddHook(errorCountHook{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		log.Printf("Redis disabled: %v", err)
		client = nil
		return
	}

	log.Println("Redis connected")
	client = c
}

// SetClient swaps the client directly. Used by tests to point the cache at
// miniredis.
func SetClient(c *redis.Client) {
	client = c
}

// GetClient returns the active client, or nil when the cache is disabled.
func GetClient() *redis.Client {
	return client
}
