package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

// DefaultTestRedisAddr is used when PREPBOARD_TEST_REDIS_ADDR is unset.
const DefaultTestRedisAddr = "127.0.0.1:6379"

// SetupTestRedis connects to Redis and returns a client plus a key prefix
// unique to the test. Keys under the prefix are deleted when the test ends.
// The test is skipped when Redis is not reachable.
func SetupTestRedis(t *testing.T) (*redis.Client, string) {
	t.Helper()

	addr := os.Getenv("PREPBOARD_TEST_REDIS_ADDR")
	if addr == "" {
		addr = DefaultTestRedisAddr
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DialTimeout: 2 * time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Redis not reachable at %s (%v); skipping", addr, err)
	}

	prefix := "prepboard_test:" + sanitize(t.Name()) + ":" + time.Now().Format("150405.000000000") + ":"
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if keys, err := client.Keys(ctx, prefix+"*").Result(); err == nil && len(keys) > 0 {
			_ = client.Del(ctx, keys...).Err()
		}
		_ = client.Close()
	})
	return client, prefix
}
