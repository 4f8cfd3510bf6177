package redis

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredislib "github.com/redis/go-redis/v9"
)

// startRedis runs an in-memory Redis for one test. Retries are off so a
// stopped server surfaces on the first command, which is what the
// fallback paths in the cache and locker need to see.
func startRedis(t *testing.T) (*goredislib.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredislib.NewClient(&goredislib.Options{
		Addr:       mr.Addr(),
		MaxRetries: -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

// requireTTL fails the test unless key is set to expire after want.
func requireTTL(t *testing.T, mr *miniredis.Miniredis, key string, want time.Duration) {
	t.Helper()

	if !mr.Exists(key) {
		t.Fatalf("expected key %s to exist", key)
	}
	if got := mr.TTL(key); got != want {
		t.Fatalf("expected ttl %v on %s, got %v", want, key, got)
	}
}
