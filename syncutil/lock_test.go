// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package syncutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeoutLock_AcquireRelease(t *testing.T) {
	stats := NewLockStatistics()
	l := NewTimeoutLock("test", PriorityHigh, false, time.Second, nil, stats)
	require.True(t, l.Acquire(context.Background(), "owner1", 0))
	l.Release("owner1")

	snap, ok := stats.GetLockStats("test")
	require.True(t, ok)
	assert.Equal(t, uint64(1), snap.Acquisitions)
}

func TestTimeoutLock_TimesOutWhenHeld(t *testing.T) {
	stats := NewLockStatistics()
	l := NewTimeoutLock("test", PriorityHigh, false, 50*time.Millisecond, nil, stats)
	require.True(t, l.Acquire(context.Background(), "owner1", 0))
	defer l.Release("owner1")

	ok := l.Acquire(context.Background(), "owner2", 20*time.Millisecond)
	assert.False(t, ok)
}

func TestLockManager_RefusesHierarchyInversion(t *testing.T) {
	stats := NewLockStatistics()
	mgr := NewLockManager(stats)
	high := NewTimeoutLock("high", PriorityHigh, false, 50*time.Millisecond, mgr, stats)
	low := NewTimeoutLock("low", PriorityLow, false, time.Second, mgr, stats)

	require.True(t, low.Acquire(context.Background(), "owner1", 0))
	defer low.Release("owner1")

	// owner1 already holds a LOW lock; acquiring a HIGH (higher-priority)
	// global lock afterward would invert the hierarchy and must be refused.
	assert.False(t, high.Acquire(context.Background(), "owner1", 0))
}

func TestLockManager_AllowsDescendingPriority(t *testing.T) {
	stats := NewLockStatistics()
	mgr := NewLockManager(stats)
	low := NewTimeoutLock("low", PriorityLow, false, time.Second, mgr, stats)
	high := NewTimeoutLock("high", PriorityHigh, false, time.Second, mgr, stats)

	require.True(t, high.Acquire(context.Background(), "owner1", 0))
	defer high.Release("owner1")

	assert.True(t, low.Acquire(context.Background(), "owner1", 0))
	low.Release("owner1")
}

func TestSemaphore_CurrentValue(t *testing.T) {
	sem := NewSemaphore("pages", 2, PriorityMedium, time.Second, nil)
	require.True(t, sem.Acquire(context.Background(), 0))
	assert.Equal(t, int64(1), sem.CurrentValue())
	sem.Release()
	assert.Equal(t, int64(2), sem.CurrentValue())
}

// TestLockOrdering_NoDeadlock spins many goroutines through instance and
// global locks of mixed priority for a bounded duration and asserts that
// every goroutine completes — i.e. no deadlock and no lost wakeups.
func TestLockOrdering_NoDeadlock(t *testing.T) {
	stats := NewLockStatistics()
	mgr := NewLockManager(stats)
	critical := NewTimeoutLock("critical", PriorityCritical, false, 200*time.Millisecond, mgr, stats)
	medium := NewTimeoutLock("medium", PriorityMedium, false, 200*time.Millisecond, mgr, stats)
	instance := NewTimeoutLock("instance", PriorityHigh, true, 200*time.Millisecond, nil, stats)

	const workers = 10
	deadline := time.Now().Add(500 * time.Millisecond)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			owner := fmt.Sprintf("owner-%d", id)
			for time.Now().Before(deadline) {
				switch id % 3 {
				case 0:
					if critical.Acquire(context.Background(), owner, 0) {
						medium.Acquire(context.Background(), owner, 0)
						medium.Release(owner)
						critical.Release(owner)
					}
				case 1:
					if instance.Acquire(context.Background(), owner, 0) {
						instance.Release(owner)
					}
				default:
					if medium.Acquire(context.Background(), owner, 0) {
						medium.Release(owner)
					}
				}
			}
		}(i)
	}
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("goroutines did not complete — suspected deadlock")
	}
}
