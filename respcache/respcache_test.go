// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package respcache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hideme/pdf-redact-engine/docmodel"
	"github.com/hideme/pdf-redact-engine/syncutil"
)

func newTestCache(cfg Config) *Cache {
	stats := syncutil.NewLockStatistics()
	mgr := syncutil.NewLockManager(stats)
	return New(cfg, mgr, stats)
}

func TestCache_SetGet(t *testing.T) {
	c := newTestCache(DefaultConfig())
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, "k1", docmodel.CacheEntry{Content: []byte("hello"), StatusCode: 200}, 0)

	got, ok := c.Get("k1")
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), got.Content)
}

func TestCache_ExpiredEntryIsMiss(t *testing.T) {
	c := newTestCache(DefaultConfig())
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, "k1", docmodel.CacheEntry{Content: []byte("x")}, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("k1")
	assert.False(t, ok)
}

func TestCache_EvictsLRUAtCapacity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEntries = 2
	c := newTestCache(cfg)
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, "a", docmodel.CacheEntry{Content: []byte("a")}, time.Minute)
	time.Sleep(time.Millisecond)
	c.Set(ctx, "b", docmodel.CacheEntry{Content: []byte("b")}, time.Minute)
	time.Sleep(time.Millisecond)

	// touch "a" so "b" becomes the LRU victim
	c.Get("a")
	time.Sleep(time.Millisecond)
	c.Set(ctx, "c", docmodel.CacheEntry{Content: []byte("c")}, time.Minute)

	_, bOK := c.Get("b")
	_, aOK := c.Get("a")
	_, cOK := c.Get("c")
	assert.False(t, bOK)
	assert.True(t, aOK)
	assert.True(t, cOK)
}

func TestCache_CleanupExpiredSweeps(t *testing.T) {
	c := newTestCache(DefaultConfig())
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, "k1", docmodel.CacheEntry{Content: []byte("x")}, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	removed := c.CleanupExpired(ctx)
	assert.Equal(t, 1, removed)
}

func TestCache_Stats_HitRate(t *testing.T) {
	c := newTestCache(DefaultConfig())
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, "k1", docmodel.CacheEntry{Content: []byte("x")}, time.Minute)
	c.Get("k1")
	c.Get("missing")

	s := c.Stats()
	assert.Equal(t, int64(1), s.Hits)
	assert.Equal(t, int64(1), s.Misses)
	assert.Equal(t, 0.5, s.HitRate)
}

// TestCache_ConcurrentAccess exercises the lock-free read path against
// concurrent exclusive writers, modeled on the pack's lock-stress tests.
func TestCache_ConcurrentAccess(t *testing.T) {
	c := newTestCache(DefaultConfig())
	defer c.Close()

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", id%5)
			for j := 0; j < 50; j++ {
				c.Set(ctx, key, docmodel.CacheEntry{Content: []byte("v")}, time.Minute)
				c.Get(key)
			}
		}(i)
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("concurrent cache access did not complete in time")
	}
}
