// Package store is the Redis-backed shared state layer. All durable gateway
// state (rate counters, sessions) lives here; gateway instances hold nothing
// in process, so any instance can serve any request.
package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultDialTimeout = 5 * time.Second

// Options configures the Redis connection.
type Options struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
}

// Store wraps the shared Redis client.
type Store struct {
	rdb *redis.Client
}

// New opens a Redis client with the given options. The connection is lazy;
// use CheckHealth to verify reachability.
func New(opts Options) *Store {
	dialTimeout := opts.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: dialTimeout,
	})

	return &Store{rdb: rdb}
}

// CheckHealth pings the backing Redis instance. It satisfies the health
// manager's checker interface.
func (s *Store) CheckHealth(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.rdb.Close()
}
