package cache

import (
	"container/list"
	"context"
	"encoding/json"
	"sync"
	"time"
)

const (
	defaultMemorySize  = 1000
	defaultMemoryTTL   = 7 * 24 * time.Hour
	defaultSweepPeriod = 5 * time.Minute
)

type memoryEntry struct {
	key      string
	value    any
	expireAt time.Time
}

// MemoryCache is a bounded in-process Service. Least recently used entries are
// evicted first; expired entries are dropped on access and by a periodic sweep.
type MemoryCache struct {
	mu         sync.Mutex
	items      map[string]*list.Element
	order      *list.List // front = most recently used
	maxSize    int
	sweepEvery time.Duration
	now        func() time.Time
	stop       chan struct{}
	closeOnce  sync.Once
}

// NewMemoryCache creates an in-memory cache and starts its sweeper.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	mc := &MemoryCache{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		maxSize:    defaultMemorySize,
		sweepEvery: defaultSweepPeriod,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(mc)
	}
	go mc.sweep()
	return mc
}

// Len reports the number of stored entries, expired ones included until swept.
func (mc *MemoryCache) Len() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.order.Len()
}

// Set stores value until expiration (seven days when expiration <= 0).
func (mc *MemoryCache) Set(_ context.Context, key string, value any, expiration time.Duration) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.put(key, value, expiration)
	return nil
}

func (mc *MemoryCache) put(key string, value any, expiration time.Duration) {
	if expiration <= 0 {
		expiration = defaultMemoryTTL
	}
	expireAt := mc.now().Add(expiration)

	if el, ok := mc.items[key]; ok {
		e := el.Value.(*memoryEntry)
		e.value, e.expireAt = value, expireAt
		mc.order.MoveToFront(el)
		return
	}
	mc.items[key] = mc.order.PushFront(&memoryEntry{key: key, value: value, expireAt: expireAt})
	for mc.order.Len() > mc.maxSize {
		mc.remove(mc.order.Back())
	}
}

// lookup returns the live entry for key and marks it recently used.
func (mc *MemoryCache) lookup(key string) (*memoryEntry, bool) {
	el, ok := mc.items[key]
	if !ok {
		return nil, false
	}
	e := el.Value.(*memoryEntry)
	if !mc.now().Before(e.expireAt) {
		mc.remove(el)
		return nil, false
	}
	mc.order.MoveToFront(el)
	return e, true
}

func (mc *MemoryCache) remove(el *list.Element) {
	mc.order.Remove(el)
	delete(mc.items, el.Value.(*memoryEntry).key)
}

// Get copies the value into dest. Strings written by MSet already hold JSON.
func (mc *MemoryCache) Get(_ context.Context, key string, dest any) error {
	mc.mu.Lock()
	e, ok := mc.lookup(key)
	var value any
	if ok {
		value = e.value
	}
	mc.mu.Unlock()
	if !ok {
		return ErrCacheMiss
	}

	str, isString := value.(string)
	if strPtr, ok := dest.(*string); ok && isString {
		*strPtr = str
		return nil
	}
	if isString {
		return json.Unmarshal([]byte(str), dest)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, key := range keys {
		if el, ok := mc.items[key]; ok {
			mc.remove(el)
		}
	}
	return nil
}

func (mc *MemoryCache) Exists(_ context.Context, keys ...string) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, key := range keys {
		if _, ok := mc.lookup(key); ok {
			return true, nil
		}
	}
	return false, nil
}

// MSet stores non-string values as JSON so that MGet and MGetTyped read them back
// the same way they do from Redis.
func (mc *MemoryCache) MSet(_ context.Context, values map[string]any, expiration time.Duration) error {
	encoded := make(map[string]string, len(values))
	for key, value := range values {
		if s, ok := value.(string); ok {
			encoded[key] = s
			continue
		}
		b, err := json.Marshal(value)
		if err != nil {
			return err
		}
		encoded[key] = string(b)
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()
	for key, s := range encoded {
		mc.put(key, s, expiration)
	}
	return nil
}

func (mc *MemoryCache) MGet(_ context.Context, keys ...string) (map[string]string, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	results := make(map[string]string, len(keys))
	for _, key := range keys {
		if e, ok := mc.lookup(key); ok {
			if s, ok := e.value.(string); ok {
				results[key] = s
			}
		}
	}
	return results, nil
}

// TryLock takes key for ttl unless a live entry already holds it.
func (mc *MemoryCache) TryLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if _, held := mc.lookup(key); held {
		return false, nil
	}
	mc.put(key, "locked", ttl)
	return true, nil
}

func (mc *MemoryCache) Unlock(ctx context.Context, key string) error {
	return mc.Delete(ctx, key)
}

func (mc *MemoryCache) sweep() {
	ticker := time.NewTicker(mc.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-mc.stop:
			return
		case <-ticker.C:
			mc.mu.Lock()
			now := mc.now()
			for el := mc.order.Back(); el != nil; {
				prev := el.Prev()
				if !now.Before(el.Value.(*memoryEntry).expireAt) {
					mc.remove(el)
				}
				el = prev
			}
			mc.mu.Unlock()
		}
	}
}

// Close stops the sweeper.
func (mc *MemoryCache) Close() error {
	mc.closeOnce.Do(func() { close(mc.stop) })
	return nil
}
