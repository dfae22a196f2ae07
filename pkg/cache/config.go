package cache

import "time"

// Config is the redis section of the application config. With Enabled unset
// everything, the run lock included, stays in process.
type Config struct {
	Enabled      bool          `yaml:"enabled"`
	Host         string        `yaml:"host" default:"localhost" validate:"required_if=Enabled true"`
	Port         int           `yaml:"port" default:"6379" validate:"gt=0,lte=65535"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db" validate:"gte=0"`
	Prefix       string        `yaml:"prefix" default:"swing"`
	PoolSize     int           `yaml:"pool_size" default:"10"`
	MinIdleConns int           `yaml:"min_idle_conns" default:"2"`
	DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
	MemoryItems  int           `yaml:"memory_items" default:"5000" validate:"gte=0"`
	MemoryTTL    time.Duration `yaml:"memory_ttl" default:"10m"`
}

// New returns a Redis-backed layered cache when cfg.Enabled and an in-process
// cache otherwise.
func New(cfg Config) (Service, error) {
	if !cfg.Enabled {
		return NewMemoryCache(WithMemoryMaxSize(cfg.MemoryItems)), nil
	}
	rc, err := NewRedisCache(cfg)
	if err != nil {
		return nil, err
	}
	return NewLayeredCache(rc, WithLayeredMemorySize(cfg.MemoryItems), WithLayeredMemoryTTL(cfg.MemoryTTL)), nil
}

// MemoryOption configures a MemoryCache.
type MemoryOption func(*MemoryCache)

// WithMemoryMaxSize bounds the number of entries; zero keeps the default.
func WithMemoryMaxSize(size int) MemoryOption {
	return func(mc *MemoryCache) {
		if size > 0 {
			mc.maxSize = size
		}
	}
}

// WithMemoryCleanup sets how often expired entries are swept.
func WithMemoryCleanup(interval time.Duration) MemoryOption {
	return func(mc *MemoryCache) {
		if interval > 0 {
			mc.sweepEvery = interval
		}
	}
}

// LayeredOption configures a LayeredCache.
type LayeredOption func(*LayeredCache)

// WithLayeredMemorySize bounds the L1 entry count.
func WithLayeredMemorySize(size int) LayeredOption {
	return func(lc *LayeredCache) {
		if size > 0 {
			lc.l1Size = size
		}
	}
}

// WithLayeredMemoryTTL caps how long an entry stays in L1.
func WithLayeredMemoryTTL(ttl time.Duration) LayeredOption {
	return func(lc *LayeredCache) {
		if ttl > 0 {
			lc.l1TTL = ttl
		}
	}
}
