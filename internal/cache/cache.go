// Package cache provides a content-addressed result cache: a sharded
// in-memory LRU with per-key in-flight computation dedup and an optional
// persistent backing store keyed by the same fingerprint.
package cache

import (
	"container/list"
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/docsift/docsift/internal/extract"
)

const defaultShards = 16

// Store is an optional persistent backing store. Load misses return
// (nil, false, nil). Implementations must be safe for concurrent use.
type Store interface {
	Load(ctx context.Context, key string) (*extract.Result, bool, error)
	Save(ctx context.Context, key string, r *extract.Result) error
}

// Stats are cumulative counters since cache creation.
type Stats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

// Cache maps fingerprints to extraction results. Storage is sharded so
// unrelated keys never contend; each shard carries its own lock, LRU list,
// and singleflight group.
type Cache struct {
	shards      []*shard
	capPerShard int
	store       Store

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type shard struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List // front is most recently used
	flight  singleflight.Group
}

type entry struct {
	key   string
	value *extract.Result
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	shards int
	store  Store
}

// WithShards overrides the shard count. Capacity is split evenly across
// shards and LRU order is tracked per shard, so a single shard gives exact
// global LRU at the cost of coarser locking.
func WithShards(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.shards = n
		}
	}
}

// WithStore attaches a persistent backing store. Memory misses consult the
// store before computing; computed results are written through.
func WithStore(s Store) Option {
	return func(o *options) { o.store = s }
}

// New creates a cache bounded to roughly capacity entries. Capacity is
// enforced per shard (capacity / shard count, minimum 1 each).
func New(capacity int, opts ...Option) *Cache {
	o := options{shards: defaultShards}
	for _, opt := range opts {
		opt(&o)
	}
	if capacity < o.shards {
		// Small capacities collapse to one shard so the bound stays exact.
		o.shards = 1
	}
	perShard := capacity / o.shards
	if perShard < 1 {
		perShard = 1
	}
	c := &Cache{
		shards:      make([]*shard, o.shards),
		capPerShard: perShard,
		store:       o.store,
	}
	for i := range c.shards {
		c.shards[i] = &shard{entries: make(map[string]*list.Element), lru: list.New()}
	}
	return c
}

func (c *Cache) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return c.shards[h.Sum32()%uint32(len(c.shards))]
}

// Get returns the cached result for key, refreshing its recency.
func (c *Cache) Get(key string) (*extract.Result, bool) {
	sh := c.shardFor(key)
	v, ok := sh.get(key)
	if ok {
		c.hits.Add(1)
	}
	return v, ok
}

// GetOrCompute returns the cached result for key, or runs compute exactly
// once across all concurrent callers for that key. Waiters coalesced onto an
// in-flight computation receive its value and count as hits. A compute
// failure reaches every waiter but is never stored, so the next call retries.
func (c *Cache) GetOrCompute(ctx context.Context, key string, compute func(ctx context.Context) (*extract.Result, error)) (*extract.Result, error) {
	sh := c.shardFor(key)
	if v, ok := sh.get(key); ok {
		c.hits.Add(1)
		return v, nil
	}
	executed := false
	ch := sh.flight.DoChan(key, func() (any, error) {
		executed = true
		// Re-check: a previous flight may have finished between our miss
		// and this closure starting.
		if v, ok := sh.get(key); ok {
			c.hits.Add(1)
			return v, nil
		}
		c.misses.Add(1)
		if c.store != nil {
			if v, ok, err := c.store.Load(ctx, key); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("cache store load failed; computing")
			} else if ok {
				c.insert(sh, key, v)
				return v, nil
			}
		}
		v, err := compute(ctx)
		if err != nil {
			// Not stored: the key stays eligible for a fresh attempt.
			return nil, err
		}
		c.insert(sh, key, v)
		if c.store != nil {
			if err := c.store.Save(ctx, key, v); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("cache store save failed")
			}
		}
		return v, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if !executed {
			c.hits.Add(1)
		}
		return res.Val.(*extract.Result), nil
	case <-ctx.Done():
		// The in-flight computation keeps running for the other waiters;
		// this caller stops waiting.
		if ctx.Err() == context.DeadlineExceeded {
			return nil, extract.ErrTimeout
		}
		return nil, extract.ErrCancelled
	}
}

// Len reports the current number of cached entries.
func (c *Cache) Len() int {
	n := 0
	for _, sh := range c.shards {
		sh.mu.Lock()
		n += sh.lru.Len()
		sh.mu.Unlock()
	}
	return n
}

// Stats returns cumulative hit, miss, and eviction counts.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

func (sh *shard) get(key string) (*extract.Result, bool) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	el, ok := sh.entries[key]
	if !ok {
		return nil, false
	}
	sh.lru.MoveToFront(el)
	return el.Value.(*entry).value, true
}

func (c *Cache) insert(sh *shard, key string, v *extract.Result) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if el, ok := sh.entries[key]; ok {
		el.Value.(*entry).value = v
		sh.lru.MoveToFront(el)
		return
	}
	sh.entries[key] = sh.lru.PushFront(&entry{key: key, value: v})
	for sh.lru.Len() > c.capPerShard {
		oldest := sh.lru.Back()
		if oldest == nil {
			break
		}
		sh.lru.Remove(oldest)
		delete(sh.entries, oldest.Value.(*entry).key)
		c.evictions.Add(1)
	}
}
