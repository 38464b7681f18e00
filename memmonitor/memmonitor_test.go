// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package memmonitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_AppliesAdaptiveThresholds(t *testing.T) {
	cfg := DefaultConfig()
	m := New(cfg, nil)
	snap := m.Snapshot()
	assert.Greater(t, snap.MemoryThreshold, 0.0)
	assert.Greater(t, snap.CriticalThreshold, snap.MemoryThreshold)
}

func TestMonitor_StartStop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CheckInterval = 10 * time.Millisecond
	m := New(cfg, nil)
	m.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	m.Stop()

	snap := m.Snapshot()
	assert.GreaterOrEqual(t, snap.ChecksCount, uint64(1))
}

func TestMonitor_OnCleanupInvokedUnderEmergency(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CriticalThreshold = -1 // force every sample to look critical
	cfg.MemoryThreshold = -1
	cfg.MinGCInterval = 0
	m := New(cfg, nil)

	called := make(chan struct{}, 1)
	m.OnCleanup(func() {
		select {
		case called <- struct{}{}:
		default:
		}
	})
	m.sample()

	select {
	case <-called:
	default:
		t.Fatal("expected cleanup callback to run when usage exceeds critical threshold")
	}
}

func TestMonitor_Optimized_RunsFn(t *testing.T) {
	m := New(DefaultConfig(), nil)
	ran := false
	err := m.Optimized(1, func() error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestMonitor_ShouldThrottleBatch_DoesNotPanic(t *testing.T) {
	m := New(DefaultConfig(), nil)
	_ = m.ShouldThrottleBatch()
}
