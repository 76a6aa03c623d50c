package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist records revoked session ids for the lifetime of any cache
// token that could still name them. Without it a logout would leave the
// signed cache cookie usable until its own expiry.
type Denylist interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

type RedisDenylist struct {
	client *redis.Client
}

func NewRedisDenylist(client *redis.Client) *RedisDenylist {
	return &RedisDenylist{client: client}
}

var _ Denylist = (*RedisDenylist)(nil)

func denylistKey(sessionID string) string {
	return fmt.Sprintf("optiplan:revoked:%s", sessionID)
}

func (d *RedisDenylist) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	return d.client.Set(ctx, denylistKey(sessionID), "1", ttl).Err()
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	n, err := d.client.Exists(ctx, denylistKey(sessionID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
