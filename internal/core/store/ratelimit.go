package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrWindowScript creates-or-increments a fixed-window counter in one
// atomic step. The expiry is set only when the counter is created, so later
// increments never extend the window. Returns {count, remaining ms}.
var incrWindowScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
return {count, ttl}
`)

// IncrWindow atomically increments the counter under key, creating it with
// the window expiry on first use, and returns the new count plus the
// window's remaining lifetime. Concurrent callers across gateway instances
// serialize on Redis, so exactly one counter exists per key per window and
// the count is monotonically accurate.
func (s *Store) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	res, err := incrWindowScript.Run(ctx, s.rdb, []string{key}, window.Milliseconds()).Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("increment rate counter: %w", err)
	}
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("increment rate counter: unexpected script reply of length %d", len(res))
	}

	count, ok := res[0].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("increment rate counter: unexpected count type %T", res[0])
	}
	ttlMillis, ok := res[1].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("increment rate counter: unexpected ttl type %T", res[1])
	}

	ttl := time.Duration(ttlMillis) * time.Millisecond
	if ttlMillis < 0 {
		ttl = 0
	}

	return count, ttl, nil
}
