package webhook

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultDedupTTL    = 10 * time.Minute
	notificationPrefix = "midtrans:notification"
)

// Deduper remembers notification keys that were already handled.
type Deduper interface {
	// Seen records key and reports whether it was recorded before.
	Seen(ctx context.Context, key string) (bool, error)
	// Forget drops key so the next redelivery is processed again.
	Forget(ctx context.Context, key string) error
	// Close releases connections the deduper opened itself.
	Close() error
}

type redisDeduper struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
	closer io.Closer // set only when the client was created here
}

func (d *redisDeduper) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.prefix+":"+key, "1", d.ttl).Result()
	if err != nil {
		return false, err
	}
	// SETNX false means the key already exists.
	return !ok, nil
}

func (d *redisDeduper) Forget(ctx context.Context, key string) error {
	return d.client.Del(ctx, d.prefix+":"+key).Err()
}

func (d *redisDeduper) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

type memoryDeduper struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	ttl    time.Duration
	nextGC time.Time
	now    func() time.Time
}

func NewMemoryDeduper(ttl time.Duration) Deduper {
	return newMemoryDeduper(ttl, time.Now)
}

func newMemoryDeduper(ttl time.Duration, now func() time.Time) *memoryDeduper {
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}
	return &memoryDeduper{
		seen:   make(map[string]time.Time),
		ttl:    ttl,
		nextGC: now().Add(ttl),
		now:    now,
	}
}

func (d *memoryDeduper) Seen(_ context.Context, key string) (bool, error) {
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if exp, ok := d.seen[key]; ok && exp.After(now) {
		return true, nil
	}

	d.seen[key] = now.Add(d.ttl)
	if now.After(d.nextGC) {
		for k, exp := range d.seen {
			if exp.Before(now) {
				delete(d.seen, k)
			}
		}
		d.nextGC = now.Add(d.ttl)
	}

	return false, nil
}

func (d *memoryDeduper) Forget(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, key)
	return nil
}

func (d *memoryDeduper) Close() error {
	return nil
}

// NewRedisDeduper wraps an existing client. Keys are stored as prefix:key.
// Close leaves the client open; its owner closes it.
func NewRedisDeduper(client redis.Cmdable, prefix string, ttl time.Duration) Deduper {
	return newRedisDeduper(client, prefix, ttl)
}

func newRedisDeduper(client redis.Cmdable, prefix string, ttl time.Duration) *redisDeduper {
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}
	if prefix == "" {
		prefix = "payment:webhook"
	}
	return &redisDeduper{client: client, prefix: prefix, ttl: ttl}
}

// NewDeduper connects to Redis at addr and falls back to memory when addr is
// empty or the server does not answer a ping. The returned error reports the
// failed ping; the deduper is usable either way. Close it on shutdown.
func NewDeduper(addr, pass string, db int, ttl time.Duration) (Deduper, error) {
	if addr == "" {
		return NewMemoryDeduper(ttl), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pass,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return NewMemoryDeduper(ttl), err
	}

	d := newRedisDeduper(client, notificationPrefix, ttl)
	d.closer = client
	return d, nil
}
