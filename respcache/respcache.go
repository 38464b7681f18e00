// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package respcache implements the bounded TTL/ETag/LRU response cache:
// RWMutex-guarded reads, exclusive LOW-priority-locked writes, sweep-then-evict
// on overflow, and periodic background cleanup.
package respcache

import (
	"context"
	"sync"
	"time"

	"github.com/hideme/pdf-redact-engine/docmodel"
	"github.com/hideme/pdf-redact-engine/syncutil"
)

// Config controls cache capacity and default/cleanup timing.
type Config struct {
	MaxEntries     int           `validate:"gt=0"`
	DefaultTTL     time.Duration `validate:"gt=0"`
	CleanupPeriod  time.Duration `validate:"gt=0"`
	WriteLockTimeout time.Duration `validate:"gt=0"`
}

// DefaultConfig matches the cache this package is grounded on: max=1000,
// default TTL 600s, cleanup sweep every 60s.
func DefaultConfig() Config {
	return Config{
		MaxEntries:       1000,
		DefaultTTL:       600 * time.Second,
		CleanupPeriod:    60 * time.Second,
		WriteLockTimeout: 5 * time.Second,
	}
}

type entry struct {
	value      docmodel.CacheEntry
	expiresAt  time.Time
	accessTime time.Time
}

// Cache is the bounded response cache. Reads do not take the write
// TimeoutLock, but they are not lock-free: a read takes the RWMutex read
// lock for the lookup and, on a hit, briefly its write lock to stamp the
// access time. Writes are additionally serialized through a
// LOW-priority TimeoutLock so that a stuck writer cannot starve the
// rest of the synchronization hierarchy's higher-priority locks.
type Cache struct {
	cfg Config

	mu      sync.RWMutex
	entries map[string]*entry

	writeLock *syncutil.TimeoutLock

	stopCh chan struct{}
	doneCh chan struct{}

	hits, misses, evictions, sets int64
	statsMu                       sync.Mutex
}

// New constructs a Cache and starts its background cleanup loop.
func New(cfg Config, manager *syncutil.LockManager, stats *syncutil.LockStatistics) *Cache {
	c := &Cache{
		cfg:       cfg,
		entries:   make(map[string]*entry, cfg.MaxEntries),
		writeLock: syncutil.NewTimeoutLock("response_cache_write", syncutil.PriorityLow, false, cfg.WriteLockTimeout, manager, stats),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Get looks key up under the RWMutex read lock and, on a hit, takes the
// RWMutex write lock briefly to record the access time used for LRU
// eviction; it never takes the write TimeoutLock. Expired
// entries are reported as misses without being removed inline — removal
// is left to the next set() overflow sweep or the background cleanup.
func (c *Cache) Get(key string) (docmodel.CacheEntry, bool) {
	c.mu.RLock()
	e, found := c.entries[key]
	c.mu.RUnlock()

	if !found || time.Now().After(e.expiresAt) {
		c.bump(&c.misses)
		return docmodel.CacheEntry{}, false
	}

	c.mu.Lock()
	e.accessTime = time.Now()
	c.mu.Unlock()

	c.bump(&c.hits)
	return e.value, true
}

// Set stores value under key, evicting to make room if the cache is at
// capacity. It runs under the cache's LOW-priority write lock so a
// blocked write never inverts the priority hierarchy for callers also
// holding higher-priority locks.
func (c *Cache) Set(ctx context.Context, key string, value docmodel.CacheEntry, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.cfg.DefaultTTL
	}
	ok, _ := c.writeLock.AcquireTimeout(ctx, "respcache.Set", 0, func() error {
		c.mu.Lock()
		defer c.mu.Unlock()

		if _, exists := c.entries[key]; !exists && len(c.entries) >= c.cfg.MaxEntries {
			c.sweepExpiredLocked()
			if len(c.entries) >= c.cfg.MaxEntries {
				c.evictLRULocked()
			}
		}

		now := time.Now()
		value.ExpiresAt = now.Add(ttl).Unix()
		c.entries[key] = &entry{value: value, expiresAt: now.Add(ttl), accessTime: now}
		return nil
	})
	if ok {
		c.bump(&c.sets)
	}
}

// Delete removes key under the write lock.
func (c *Cache) Delete(ctx context.Context, key string) {
	c.writeLock.AcquireTimeout(ctx, "respcache.Delete", 0, func() error {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil
	})
}

// Clear drops every entry under the write lock — this is also the hook
// memmonitor invokes under sustained memory pressure.
func (c *Cache) Clear() {
	c.writeLock.AcquireTimeout(context.Background(), "respcache.Clear", 0, func() error {
		c.mu.Lock()
		c.entries = make(map[string]*entry, c.cfg.MaxEntries)
		c.mu.Unlock()
		return nil
	})
}

// sweepExpiredLocked removes every expired entry. Caller must hold mu.
func (c *Cache) sweepExpiredLocked() {
	now := time.Now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
			c.bump(&c.evictions)
		}
	}
}

// evictLRULocked removes the least-recently-accessed entry. Caller must
// hold mu.
func (c *Cache) evictLRULocked() {
	var oldestKey string
	var oldestTime time.Time
	for k, e := range c.entries {
		if oldestKey == "" || e.accessTime.Before(oldestTime) {
			oldestKey = k
			oldestTime = e.accessTime
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.bump(&c.evictions)
	}
}

// CleanupExpired runs one expiry sweep outside the regular set() path —
// exposed for tests and for callers that want to force a sweep.
func (c *Cache) CleanupExpired(ctx context.Context) int {
	before := 0
	after := 0
	c.writeLock.AcquireTimeout(ctx, "respcache.Cleanup", 0, func() error {
		c.mu.Lock()
		before = len(c.entries)
		c.sweepExpiredLocked()
		after = len(c.entries)
		c.mu.Unlock()
		return nil
	})
	return before - after
}

func (c *Cache) cleanupLoop() {
	defer close(c.doneCh)
	ticker := time.NewTicker(c.cfg.CleanupPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.CleanupExpired(context.Background())
		case <-c.stopCh:
			return
		}
	}
}

// Close stops the background cleanup loop.
func (c *Cache) Close() {
	close(c.stopCh)
	<-c.doneCh
}

func (c *Cache) bump(counter *int64) {
	c.statsMu.Lock()
	*counter++
	c.statsMu.Unlock()
}

// Stats is a point-in-time snapshot of cache performance counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Sets      int64
	Entries   int
	HitRate   float64
}

// Stats returns the current cache statistics.
func (c *Cache) Stats() Stats {
	c.statsMu.Lock()
	hits, misses, evictions, sets := c.hits, c.misses, c.evictions, c.sets
	c.statsMu.Unlock()

	c.mu.RLock()
	n := len(c.entries)
	c.mu.RUnlock()

	total := hits + misses
	rate := 0.0
	if total > 0 {
		rate = float64(hits) / float64(total)
	}
	return Stats{Hits: hits, Misses: misses, Evictions: evictions, Sets: sets, Entries: n, HitRate: rate}
}
