package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestHelper(t *testing.T) *CacheHelper {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCacheHelper(client, "test:")
}

func TestCacheHelper_SetGet(t *testing.T) {
	helper := newTestHelper(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Coins int    `json:"coins"`
	}

	if err := helper.Set(ctx, "balance:u1", payload{Name: "Ana", Coins: 42}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got payload
	if err := helper.Get(ctx, "balance:u1", &got); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "Ana" || got.Coins != 42 {
		t.Errorf("unexpected payload: %+v", got)
	}
}

func TestCacheHelper_GetMissing(t *testing.T) {
	helper := newTestHelper(t)

	var dest map[string]string
	err := helper.Get(context.Background(), "nope", &dest)
	if !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("expected ErrCacheNotFound, got %v", err)
	}
}

func TestCacheHelper_DeleteAndPattern(t *testing.T) {
	helper := newTestHelper(t)
	ctx := context.Background()

	for _, key := range []string{"user:id:1", "user:id:2", "user:email:a@b.c"} {
		if err := helper.Set(ctx, key, "x", time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if err := helper.Delete(ctx, "user:id:1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	var dest string
	if err := helper.Get(ctx, "user:id:1", &dest); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("expected deleted key, got %v", err)
	}

	if err := helper.InvalidatePattern(ctx, "user:*"); err != nil {
		t.Fatalf("InvalidatePattern failed: %v", err)
	}
	if err := helper.Get(ctx, "user:email:a@b.c", &dest); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("expected invalidated key, got %v", err)
	}
}

func TestCacheHelper_NilClient(t *testing.T) {
	helper := NewCacheHelper(nil, "test:")
	ctx := context.Background()

	if err := helper.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Errorf("Set with nil client should degrade gracefully, got %v", err)
	}
	var dest string
	if err := helper.Get(ctx, "k", &dest); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("expected ErrCacheNotAvailable, got %v", err)
	}
}
