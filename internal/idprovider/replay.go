package idprovider

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReplayGuard remembers delivered webhook ids.
type ReplayGuard interface {
	// FirstDelivery records id and reports whether it had not been seen before.
	FirstDelivery(ctx context.Context, id string) (bool, error)
	// Release forgets id so a failed delivery can be retried.
	Release(ctx context.Context, id string) error
}

// RedisReplayGuard stores ids with SETNX so every replica shares the view.
type RedisReplayGuard struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisReplayGuard builds a guard keeping ids for ttl.
func NewRedisReplayGuard(client *redis.Client, ttl time.Duration) *RedisReplayGuard {
	return &RedisReplayGuard{client: client, ttl: ttl, prefix: "webhook:delivery:"}
}

func (g *RedisReplayGuard) FirstDelivery(ctx context.Context, id string) (bool, error) {
	return g.client.SetNX(ctx, g.prefix+id, time.Now().Unix(), g.ttl).Result()
}

func (g *RedisReplayGuard) Release(ctx context.Context, id string) error {
	return g.client.Del(ctx, g.prefix+id).Err()
}

// MemoryReplayGuard is a single-process guard.
type MemoryReplayGuard struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[string]time.Time
	now  func() time.Time
}

// NewMemoryReplayGuard builds a guard keeping ids for ttl.
func NewMemoryReplayGuard(ttl time.Duration) *MemoryReplayGuard {
	return &MemoryReplayGuard{ttl: ttl, seen: make(map[string]time.Time), now: time.Now}
}

func (g *MemoryReplayGuard) FirstDelivery(_ context.Context, id string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for key, expires := range g.seen {
		if now.After(expires) {
			delete(g.seen, key)
		}
	}
	if _, ok := g.seen[id]; ok {
		return false, nil
	}
	g.seen[id] = now.Add(g.ttl)
	return true, nil
}

func (g *MemoryReplayGuard) Release(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.seen, id)
	return nil
}
