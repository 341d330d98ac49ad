package fetch

import (
	"container/list"
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MemoryCache is an LRU cache bounded by total bytes, with a TTL per entry.
type MemoryCache struct {
	mu       sync.Mutex
	maxBytes int
	size     int
	ttl      time.Duration
	lst      *list.List
	dict     map[string]*list.Element
}

type memEntry struct {
	key  string
	data []byte
	exp  time.Time
}

// NewMemoryCache holds up to maxBytes of data. A zero ttl keeps entries
// until they are evicted.
func NewMemoryCache(maxBytes int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		maxBytes: maxBytes,
		ttl:      ttl,
		lst:      list.New(),
		dict:     make(map[string]*list.Element),
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.dict[key]
	if !ok {
		return nil, false
	}
	it := e.Value.(*memEntry)
	if !it.exp.IsZero() && !time.Now().Before(it.exp) {
		c.remove(e)
		return nil, false
	}
	c.lst.MoveToFront(e)
	return it.data, true
}

// Set stores data. Entries larger than the whole cache are not stored.
func (c *MemoryCache) Set(_ context.Context, key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(data) > c.maxBytes {
		return
	}
	var exp time.Time
	if c.ttl > 0 {
		exp = time.Now().Add(c.ttl)
	}

	if e, ok := c.dict[key]; ok {
		it := e.Value.(*memEntry)
		c.size += len(data) - len(it.data)
		it.data, it.exp = data, exp
		c.lst.MoveToFront(e)
	} else {
		c.dict[key] = c.lst.PushFront(&memEntry{key: key, data: data, exp: exp})
		c.size += len(data)
	}

	for c.size > c.maxBytes {
		back := c.lst.Back()
		if back == nil {
			break
		}
		c.remove(back)
	}
}

// Len returns the number of entries.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lst.Len()
}

func (c *MemoryCache) remove(e *list.Element) {
	it := e.Value.(*memEntry)
	c.lst.Remove(e)
	delete(c.dict, it.key)
	c.size -= len(it.data)
}

// RedisCache stores bytes in Redis under a key prefix.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisCache wraps client. A nil logger uses slog.Default.
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl, logger: logger}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("redis_get_error", "key", key, "error", err)
		}
		return nil, false
	}
	return data, true
}

func (c *RedisCache) Set(ctx context.Context, key string, data []byte) {
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		c.logger.Debug("redis_set_error", "key", key, "error", err)
	}
}

// OpenRedis returns a client for addr, or nil when addr is empty.
func OpenRedis(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}
