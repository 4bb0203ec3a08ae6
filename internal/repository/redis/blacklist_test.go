package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"

	"github.com/arklim/tourism-api/internal/infra/security"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func TestBlacklistCache_RememberAndContains(t *testing.T) {
	client, server := newTestRedis(t)
	cache := NewBlacklistCache(client, "bl")

	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	ctx := context.Background()
	if err := cache.Remember(ctx, "token-abc", now.Add(10*time.Minute)); err != nil {
		t.Fatalf("Remember returned error: %v", err)
	}

	hit, err := cache.Contains(ctx, "token-abc")
	if err != nil {
		t.Fatalf("Contains returned error: %v", err)
	}
	if !hit {
		t.Fatal("expected token to be cached")
	}

	key := "bl:" + security.HashToken("token-abc")
	if !server.Exists(key) {
		t.Fatalf("expected hashed key %s to exist", key)
	}
	if ttl := server.TTL(key); ttl <= 0 || ttl > 10*time.Minute {
		t.Fatalf("expected ttl within (0, 10m], got %v", ttl)
	}

	server.FastForward(11 * time.Minute)

	hit, err = cache.Contains(ctx, "token-abc")
	if err != nil {
		t.Fatalf("Contains returned error: %v", err)
	}
	if hit {
		t.Fatal("expected cache entry to expire with the token")
	}
}

func TestBlacklistCache_SkipsExpiredTokens(t *testing.T) {
	client, server := newTestRedis(t)
	cache := NewBlacklistCache(client, "")

	if err := cache.Remember(context.Background(), "old", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Remember returned error: %v", err)
	}
	if keys := server.Keys(); len(keys) != 0 {
		t.Fatalf("expected no keys for expired token, got %v", keys)
	}
}

func TestBlacklistCache_InvalidInput(t *testing.T) {
	client, _ := newTestRedis(t)
	cache := NewBlacklistCache(client, "bl")

	if err := cache.Remember(context.Background(), " ", time.Now().Add(time.Minute)); err == nil {
		t.Fatal("expected error for empty token")
	}
	if _, err := cache.Contains(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty token in Contains")
	}
}

func TestBlacklistCache_MissIsFalse(t *testing.T) {
	client, _ := newTestRedis(t)
	cache := NewBlacklistCache(client, "bl")

	hit, err := cache.Contains(context.Background(), "never-seen")
	if err != nil {
		t.Fatalf("Contains returned error: %v", err)
	}
	if hit {
		t.Fatal("expected miss")
	}
}
