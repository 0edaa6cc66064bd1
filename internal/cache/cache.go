// Package cache wraps a durable key/value store with TTL-based invalidation
// and batched writes. Reads are always served from memory; the whole cache is
// persisted as one envelope by a background ticker, and only when dirty.
package cache

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/mmcdole/rfcpaths/internal/domain"
)

const (
	DefaultTTL           = time.Hour
	DefaultFlushInterval = 10 * time.Second
)

// Options configures a cache instance
type Options struct {
	TTL           time.Duration
	FlushInterval time.Duration
	Now           func() time.Time
	Logger        *slog.Logger
}

// envelope is the persisted record: {"ts": epoch-millis, "data": {...}}
type envelope[V any] struct {
	TS   int64        `json:"ts"`
	Data map[string]V `json:"data"`
}

type entry[V any] struct {
	value V
	stamp time.Time
}

// Process-wide registry: one live instance per cache key
var (
	registryMu sync.Mutex
	registry   = make(map[string]struct{})
)

// Cache is an expiring key/value cache backed by a domain.KVStore.
type Cache[V any] struct {
	store    domain.KVStore
	key      string
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger

	mu      sync.Mutex
	entries map[string]entry[V]
	dirty   bool
	refs    int
	closed  bool // Open's own reference was dropped

	stop chan struct{}
	done chan struct{}
}

// Open loads the envelope stored under key and starts the flush ticker.
// A fresh envelope seeds memory; a stale or malformed one is deleted and
// initial is used instead. Opening a key that is already live fails with
// domain.ErrCacheKeyInUse.
func Open[V any](store domain.KVStore, key string, initial map[string]V, opts Options) (*Cache[V], error) {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = DefaultFlushInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	registryMu.Lock()
	if _, live := registry[key]; live {
		registryMu.Unlock()
		return nil, fmt.Errorf("open %q: %w", key, domain.ErrCacheKeyInUse)
	}
	registry[key] = struct{}{}
	registryMu.Unlock()

	c := &Cache[V]{
		store:    store,
		key:      key,
		ttl:      opts.TTL,
		interval: opts.FlushInterval,
		now:      opts.Now,
		logger:   opts.Logger.With("cache", key),
		entries:  make(map[string]entry[V]),
		refs:     1,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	if !c.load() {
		stamp := c.now()
		for k, v := range initial {
			c.entries[k] = entry[V]{value: v, stamp: stamp}
		}
	}

	go c.run()

	return c, nil
}

// load seeds memory from the persisted envelope and reports whether it did
func (c *Cache[V]) load() bool {
	raw, ok, err := c.store.Get(c.key)
	if err != nil {
		c.logger.Error("failed to read cached data", "error", err)
		return false
	}
	if !ok {
		return false
	}

	var env envelope[V]
	if err := json.Unmarshal(raw, &env); err != nil {
		c.logger.Error("failed to deserialize cached data", "error", fmt.Errorf("%w: %v", domain.ErrMalformedEnvelope, err))
		c.discard()
		return false
	}

	if env.TS == 0 || env.Data == nil {
		c.logger.Warn("unexpected cached data format", "bytes", len(raw))
		c.discard()
		return false
	}

	stamp := time.UnixMilli(env.TS)
	if c.now().Sub(stamp) > c.ttl {
		c.logger.Debug("cached data has expired", "ts", env.TS)
		c.discard()
		return false
	}

	for k, v := range env.Data {
		c.entries[k] = entry[V]{value: v, stamp: stamp}
	}
	c.logger.Debug("loaded cached data", "entries", len(env.Data), "ts", env.TS)
	return true
}

func (c *Cache[V]) discard() {
	if err := c.store.Delete(c.key); err != nil {
		c.logger.Warn("failed to delete cached data", "error", err)
	}
}

func (c *Cache[V]) run() {
	defer close(c.done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Flush(); err != nil {
				c.logger.Error("failed to store cached data", "error", err)
			}
		case <-c.stop:
			return
		}
	}
}

// Set stores value in memory and marks the cache dirty. It does not persist.
func (c *Cache[V]) Set(itemKey string, value V) {
	c.mu.Lock()
	c.entries[itemKey] = entry[V]{value: value, stamp: c.now()}
	c.dirty = true
	c.mu.Unlock()
}

// Get returns the stored value. Entries older than the TTL are evicted here.
func (c *Cache[V]) Get(itemKey string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[itemKey]
	if !ok {
		return zero, false
	}
	if c.now().Sub(e.stamp) > c.ttl {
		delete(c.entries, itemKey)
		c.dirty = true
		return zero, false
	}
	return e.value, true
}

// Len returns the number of entries held in memory, expired ones included
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Flush persists the whole map with a fresh timestamp if it is dirty.
// The ticker calls it every flush interval.
func (c *Cache[V]) Flush() error {
	c.mu.Lock()
	if !c.dirty {
		c.mu.Unlock()
		return nil
	}
	env := envelope[V]{
		TS:   c.now().UnixMilli(),
		Data: make(map[string]V, len(c.entries)),
	}
	for k, e := range c.entries {
		env.Data[k] = e.value
	}
	c.dirty = false
	c.mu.Unlock()

	data, err := json.Marshal(env)
	if err == nil {
		err = c.store.Put(c.key, data)
	}
	if err != nil {
		c.mu.Lock()
		c.dirty = true
		c.mu.Unlock()
		return fmt.Errorf("flush %q: %w", c.key, err)
	}

	c.logger.Debug("stored cached data", "entries", len(env.Data))
	return nil
}

// Clear drops every entry and deletes the persisted envelope
func (c *Cache[V]) Clear() error {
	c.mu.Lock()
	c.entries = make(map[string]entry[V])
	c.dirty = false
	c.mu.Unlock()

	return c.store.Delete(c.key)
}

// Retain adds a reference that keeps the flush ticker alive until the
// returned release func is called.
func (c *Cache[V]) Retain() (release func()) {
	c.mu.Lock()
	c.refs++
	c.mu.Unlock()

	var once sync.Once
	return func() { once.Do(c.release) }
}

// Destroy drops the reference taken by Open. Once no references remain the
// flush ticker stops and the key can be opened again. Persisted data is kept.
func (c *Cache[V]) Destroy() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()
	c.release()
}

func (c *Cache[V]) release() {
	c.mu.Lock()
	c.refs--
	last := c.refs == 0
	c.mu.Unlock()

	if !last {
		return
	}

	close(c.stop)
	<-c.done

	registryMu.Lock()
	delete(registry, c.key)
	registryMu.Unlock()
}
