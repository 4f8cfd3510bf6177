package redis

import (
	"context"
	"testing"
	"time"
)

func TestIdempotencyStore_CheckAndSetExisting(t *testing.T) {
	client, _ := startRedis(t)

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if err := client.Set(ctx, store.prefix+"key", "cached", time.Minute).Err(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	exists, resp, err := store.CheckAndSet(ctx, "key", nil, time.Minute)
	if err != nil {
		t.Fatalf("CheckAndSet failed: %v", err)
	}

	if !exists || string(resp) != "cached" {
		t.Fatalf("expected existing cached response, got exists=%v resp=%s", exists, resp)
	}
}

func TestIdempotencyStore_CheckAndSetLocksNewKey(t *testing.T) {
	client, mr := startRedis(t)

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	exists, resp, err := store.CheckAndSet(ctx, "pending", nil, time.Minute)
	if err != nil || exists || resp != nil {
		t.Fatalf("unexpected result: exists=%v resp=%v err=%v", exists, resp, err)
	}

	exists, resp, err = store.CheckAndSet(ctx, "pending", nil, time.Minute)
	if err != nil || !exists || !IsPending(resp) {
		t.Fatalf("expected second caller to see the pending marker, got exists=%v resp=%s err=%v", exists, resp, err)
	}

	requireTTL(t, mr, store.prefix+"pending", time.Minute)
}

func TestIdempotencyStore_UpdateAndRelease(t *testing.T) {
	client, mr := startRedis(t)

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if _, _, err := store.CheckAndSet(ctx, "transfer", nil, time.Minute); err != nil {
		t.Fatalf("CheckAndSet failed: %v", err)
	}
	if err := store.Update(ctx, "transfer", []byte("done"), 2*time.Minute); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	requireTTL(t, mr, store.prefix+"transfer", 2*time.Minute)

	exists, resp, err := store.CheckAndSet(ctx, "transfer", nil, time.Minute)
	if err != nil || !exists || string(resp) != "done" {
		t.Fatalf("expected stored response, got exists=%v resp=%s err=%v", exists, resp, err)
	}

	if err := store.Release(ctx, "transfer"); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if mr.Exists(store.prefix + "transfer") {
		t.Fatalf("expected key to be released")
	}
}
