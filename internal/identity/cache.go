// internal/identity/cache.go
package identity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cached wraps an Adapter with a short-lived redis cache for the two hot
// lookups used by enrichment. Mutations pass through and drop the affected
// key. Errors are never cached.
type Cached struct {
	Adapter
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// WithCache returns inner unchanged when rdb is nil.
func WithCache(inner Adapter, rdb *redis.Client, ttl time.Duration, tenantID string) Adapter {
	if rdb == nil {
		return inner
	}
	return &Cached{Adapter: inner, rdb: rdb, ttl: ttl, prefix: "idref:" + tenantID + ":"}
}

func (c *Cached) LookupUser(ctx context.Context, p UserParams) (User, error) {
	key := c.prefix + "user:" + p.UserID
	var u User
	if c.fromCache(ctx, key, &u) {
		return u, nil
	}
	u, err := c.Adapter.LookupUser(ctx, p)
	if err != nil {
		return User{}, err
	}
	c.toCache(ctx, key, u)
	return u, nil
}

func (c *Cached) LookupGroup(ctx context.Context, p GroupParams) (Group, error) {
	key := c.prefix + "group:" + p.GroupID
	var g Group
	if c.fromCache(ctx, key, &g) {
		return g, nil
	}
	g, err := c.Adapter.LookupGroup(ctx, p)
	if err != nil {
		return Group{}, err
	}
	c.toCache(ctx, key, g)
	return g, nil
}

func (c *Cached) UpdateUser(ctx context.Context, p UpdateUserParams) error {
	if err := c.Adapter.UpdateUser(ctx, p); err != nil {
		return err
	}
	c.rdb.Del(ctx, c.prefix+"user:"+p.UserID)
	return nil
}

func (c *Cached) DeleteUser(ctx context.Context, p UserParams) error {
	if err := c.Adapter.DeleteUser(ctx, p); err != nil {
		return err
	}
	c.rdb.Del(ctx, c.prefix+"user:"+p.UserID)
	return nil
}

func (c *Cached) fromCache(ctx context.Context, key string, out any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(b, out) == nil
}

func (c *Cached) toCache(ctx context.Context, key string, v any) {
	if b, err := json.Marshal(v); err == nil {
		c.rdb.Set(ctx, key, b, c.ttl)
	}
}
