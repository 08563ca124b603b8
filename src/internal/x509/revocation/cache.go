// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509revocation

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	x509cert "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/cert"
)

// CacheEntry represents a cached CRL with metadata
type CacheEntry struct {
	CRL       *x509cert.RevocationList // Decoded CRL
	Size      int                      // DER length, used for memory accounting
	FetchedAt time.Time                // When this CRL was fetched
	URL       string                   // Source URL for debugging
}

// isFresh checks if the cached CRL can be served without refetching.
// A CRL without nextUpdate is refetched after maxAge.
func (e *CacheEntry) isFresh(now time.Time, maxAge time.Duration) bool {
	if e.FetchedAt.Before(now.Add(-maxAge)) {
		return false
	}
	next := e.CRL.NextUpdate()
	return next.IsZero() || next.After(now)
}

// isExpired checks if the CRL has expired and should be cleaned up
func (e *CacheEntry) isExpired(now time.Time) bool {
	next := e.CRL.NextUpdate()
	if next.IsZero() {
		return false
	}
	// Allow 1 hour grace period
	return next.Before(now.Add(-1 * time.Hour))
}

// CacheConfig holds configuration for the CRL cache
type CacheConfig struct {
	MaxSize         int           // Maximum number of CRLs to cache (0 = unlimited, but not recommended)
	CleanupInterval time.Duration // How often to run cleanup (default: 1 hour)
	MaxAge          time.Duration // Refetch entries older than this (default: 24 hours)
}

// CacheMetrics tracks cache performance and usage
type CacheMetrics struct {
	Size        int64 // Current number of cached CRLs
	Hits        int64 // Number of cache hits
	Misses      int64 // Number of cache misses
	Evictions   int64 // Number of LRU evictions
	Cleanups    int64 // Number of expired CRL cleanups
	TotalMemory int64 // Approximate memory usage in bytes
}

// DefaultCacheConfig is used for zero fields of a [CacheConfig].
var DefaultCacheConfig = CacheConfig{
	MaxSize:         100,
	CleanupInterval: 1 * time.Hour,
	MaxAge:          24 * time.Hour,
}

// Cache is an LRU cache of downloaded CRLs keyed by distribution point URL.
//
// Thread Safety: Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*CacheEntry
	order   []string // Maintains access order for LRU eviction
	config  CacheConfig
	now     func() time.Time

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
	cleanups  atomic.Int64
}

// NewCache creates a cache. Zero or negative fields of config take the
// values of [DefaultCacheConfig], except a zero MaxSize which keeps the
// default and a negative one which means unlimited.
func NewCache(config CacheConfig) *Cache {
	cfg := DefaultCacheConfig
	switch {
	case config.MaxSize > 0:
		cfg.MaxSize = config.MaxSize
	case config.MaxSize < 0:
		cfg.MaxSize = 0
	}
	if config.CleanupInterval > 0 {
		cfg.CleanupInterval = config.CleanupInterval
	}
	if config.MaxAge > 0 {
		cfg.MaxAge = config.MaxAge
	}
	return &Cache{
		entries: make(map[string]*CacheEntry),
		config:  cfg,
		now:     time.Now,
	}
}

// Config returns the effective configuration.
func (c *Cache) Config() CacheConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config
}

// Get retrieves a fresh CRL and marks it most recently used.
func (c *Cache) Get(url string) (*x509cert.RevocationList, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[url]
	if !exists || !entry.isFresh(c.now(), c.config.MaxAge) {
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	c.touch(url)
	return entry.CRL, true
}

// Put stores a CRL, evicting the least recently used entries when full.
func (c *Cache) Put(url string, crl *x509cert.RevocationList) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[url]; !exists {
		for c.config.MaxSize > 0 && len(c.entries) >= c.config.MaxSize && len(c.order) > 0 {
			c.evict(c.order[0])
			c.evictions.Add(1)
		}
	}

	c.entries[url] = &CacheEntry{
		CRL:       crl,
		Size:      len(crl.Raw()),
		FetchedAt: c.now(),
		URL:       url,
	}
	c.touch(url)
}

// touch moves url to the most recently used position.
func (c *Cache) touch(url string) {
	c.remove(url)
	c.order = append(c.order, url)
}

func (c *Cache) remove(url string) {
	for i, u := range c.order {
		if u == url {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

func (c *Cache) evict(url string) {
	delete(c.entries, url)
	c.remove(url)
}

// Cleanup removes CRLs whose nextUpdate passed more than an hour ago and
// returns how many were removed.
func (c *Cache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var expired []string
	for url, entry := range c.entries {
		if entry.isExpired(now) {
			expired = append(expired, url)
		}
	}
	for _, url := range expired {
		c.evict(url)
	}
	c.cleanups.Add(int64(len(expired)))
	return len(expired)
}

// Run sweeps expired entries every CleanupInterval until ctx is done.
func (c *Cache) Run(ctx context.Context) {
	ticker := time.NewTicker(c.Config().CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Cleanup()
		}
	}
}

// Metrics returns a snapshot of the cache counters.
func (c *Cache) Metrics() CacheMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total int64
	for _, entry := range c.entries {
		total += int64(entry.Size) + int64(len(entry.URL)) + 24 // Approximate overhead
	}
	return CacheMetrics{
		Size:        int64(len(c.entries)),
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evictions.Load(),
		Cleanups:    c.cleanups.Load(),
		TotalMemory: total,
	}
}

// Stats returns a formatted string with cache statistics
func (c *Cache) Stats() string {
	m := c.Metrics()
	cfg := c.Config()

	hitRate := float64(0)
	if total := m.Hits + m.Misses; total > 0 {
		hitRate = float64(m.Hits) / float64(total) * 100
	}

	return fmt.Sprintf("CRL Cache Statistics:\n"+
		"  Size: %d/%d entries\n"+
		"  Memory Usage: %.2f KB\n"+
		"  Hit Rate: %.1f%% (%d hits, %d misses)\n"+
		"  Evictions: %d\n"+
		"  Cleanups: %d\n"+
		"  Cleanup Interval: %v",
		m.Size, cfg.MaxSize,
		float64(m.TotalMemory)/1024,
		hitRate, m.Hits, m.Misses,
		m.Evictions,
		m.Cleanups,
		cfg.CleanupInterval)
}
