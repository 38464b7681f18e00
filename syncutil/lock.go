// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package syncutil

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// TimeoutLock is a mutual-exclusion lock that never blocks forever: every
// acquisition carries a timeout, and a timed-out acquisition returns
// false rather than raising. It is built on a weighted semaphore of
// size 1 (golang.org/x/sync/semaphore), which is what gives it a
// context-aware, cancellable Acquire, applied here to mutual exclusion
// instead of a worker pool.
type TimeoutLock struct {
	Name           string
	Priority       LockPriority
	IsInstanceLock bool
	DefaultTimeout time.Duration

	sem     *semaphore.Weighted
	manager *LockManager
	stats   *LockStatistics
}

// NewTimeoutLock constructs a lock. manager may be nil for instance
// locks, which are exempt from hierarchy checking by definition.
func NewTimeoutLock(name string, priority LockPriority, isInstance bool, defaultTimeout time.Duration, manager *LockManager, stats *LockStatistics) *TimeoutLock {
	if stats != nil {
		stats.RegisterLock(name)
	}
	return &TimeoutLock{
		Name:           name,
		Priority:       priority,
		IsInstanceLock: isInstance,
		DefaultTimeout: defaultTimeout,
		sem:            semaphore.NewWeighted(1),
		manager:        manager,
		stats:          stats,
	}
}

// Acquire attempts to take the lock on behalf of owner, waiting up to
// timeout (or DefaultTimeout if timeout<=0). It returns false — without
// error — on timeout or on hierarchy refusal.
func (l *TimeoutLock) Acquire(ctx context.Context, owner string, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = l.DefaultTimeout
	}
	if !l.IsInstanceLock && l.manager != nil {
		if l.manager.CheckDeadlock(owner, l.Priority) {
			if l.stats != nil {
				l.stats.recordTimeout(l.Name)
			}
			return false
		}
	}
	start := time.Now()
	if !l.sem.TryAcquire(1) {
		if l.stats != nil {
			l.stats.recordContention(l.Name)
		}
		cctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := l.sem.Acquire(cctx, 1); err != nil {
			if l.stats != nil {
				l.stats.recordTimeout(l.Name)
			}
			return false
		}
	}
	if l.stats != nil {
		l.stats.recordAcquisition(l.Name, time.Since(start))
	}
	if !l.IsInstanceLock && l.manager != nil {
		l.manager.RegisterAcquisition(owner, l.Name, l.Priority)
	}
	return true
}

// Release releases the lock on behalf of owner. Releasing an unheld
// lock is a programmer error in the caller but is swallowed here, per
// the documented failure semantics: the panic from releasing an unheld
// lock is recovered and ignored (not logged) rather than propagated.
func (l *TimeoutLock) Release(owner string) {
	defer func() { recover() }() // releasing an unheld lock must not panic the caller
	l.sem.Release(1)
	if l.stats != nil {
		l.stats.recordRelease(l.Name)
	}
	if !l.IsInstanceLock && l.manager != nil {
		l.manager.RegisterRelease(owner, l.Name)
	}
}

// AcquireTimeout runs fn while holding the lock, guaranteeing release on
// every exit path. It returns (false, nil) if the lock could not be
// acquired, and otherwise (true, fn's error).
func (l *TimeoutLock) AcquireTimeout(ctx context.Context, owner string, timeout time.Duration, fn func() error) (bool, error) {
	if !l.Acquire(ctx, owner, timeout) {
		return false, nil
	}
	defer l.Release(owner)
	return true, fn()
}

// Semaphore is a bounded pool of permits with an approximate current
// value exposed for observability, used for per-operation concurrency
// limits (page fan-out, detector fan-out) rather than mutual exclusion.
type Semaphore struct {
	Name           string
	Priority       LockPriority
	DefaultTimeout time.Duration

	size    int64
	sem     *semaphore.Weighted
	current atomic.Int64 // approximate free-permit count, read via CurrentValue
	stats   *LockStatistics
}

// NewSemaphore constructs a semaphore with size permits.
func NewSemaphore(name string, size int64, priority LockPriority, defaultTimeout time.Duration, stats *LockStatistics) *Semaphore {
	if stats != nil {
		stats.RegisterLock(name)
	}
	s := &Semaphore{
		Name:           name,
		Priority:       priority,
		DefaultTimeout: defaultTimeout,
		size:           size,
		sem:            semaphore.NewWeighted(size),
		stats:          stats,
	}
	s.current.Store(size)
	return s
}

// Acquire takes one permit, waiting up to timeout (or DefaultTimeout).
func (s *Semaphore) Acquire(ctx context.Context, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = s.DefaultTimeout
	}
	start := time.Now()
	if !s.sem.TryAcquire(1) {
		if s.stats != nil {
			s.stats.recordContention(s.Name)
		}
		cctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := s.sem.Acquire(cctx, 1); err != nil {
			if s.stats != nil {
				s.stats.recordTimeout(s.Name)
			}
			return false
		}
	}
	s.current.Add(-1)
	if s.stats != nil {
		s.stats.recordAcquisition(s.Name, time.Since(start))
	}
	return true
}

// Release returns one permit, saturating at the configured size.
func (s *Semaphore) Release() {
	s.sem.Release(1)
	for {
		cur := s.current.Load()
		if cur >= s.size {
			break
		}
		if s.current.CompareAndSwap(cur, cur+1) {
			break
		}
	}
	if s.stats != nil {
		s.stats.recordRelease(s.Name)
	}
}

// CurrentValue returns the approximate number of free permits.
func (s *Semaphore) CurrentValue() int64 {
	return s.current.Load()
}
