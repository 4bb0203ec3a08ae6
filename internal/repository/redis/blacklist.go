package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/arklim/tourism-api/internal/core/port"
	"github.com/arklim/tourism-api/internal/infra/security"
)

const defaultBlacklistPrefix = "blacklist"

// BlacklistCache mirrors blacklisted tokens in Redis so the request gate can skip
// the database for tokens it has already seen revoked. Keys hold the SHA-256 of
// the token and expire together with it.
type BlacklistCache struct {
	client *red.Client
	prefix string
	now    func() time.Time
}

// NewBlacklistCache wires a Redis client into a blacklist cache.
func NewBlacklistCache(client *red.Client, keyPrefix string) *BlacklistCache {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultBlacklistPrefix
	}

	return &BlacklistCache{client: client, prefix: prefix, now: time.Now}
}

// Remember caches token as blacklisted until expiresAt. Already expired tokens are skipped.
func (c *BlacklistCache) Remember(ctx context.Context, token string, expiresAt time.Time) error {
	key := c.key(token)
	if key == "" {
		return errors.New("token must not be empty")
	}

	ttl := expiresAt.Sub(c.now())
	if ttl <= 0 {
		return nil
	}

	if err := c.client.Set(ctx, key, expiresAt.UTC().Format(time.RFC3339), ttl).Err(); err != nil {
		return fmt.Errorf("redis set blacklisted token: %w", err)
	}

	return nil
}

// Contains reports whether token is cached as blacklisted.
func (c *BlacklistCache) Contains(ctx context.Context, token string) (bool, error) {
	key := c.key(token)
	if key == "" {
		return false, errors.New("token must not be empty")
	}

	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists blacklisted token: %w", err)
	}

	return n > 0, nil
}

func (c *BlacklistCache) key(token string) string {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", c.prefix, security.HashToken(trimmed))
}

var _ port.BlacklistCache = (*BlacklistCache)(nil)
