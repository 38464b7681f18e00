// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package memmonitor tracks process and system memory pressure in the
// background and exposes adaptive thresholds that callers (the page
// batcher, the response cache) consult before doing more allocation-heavy
// work.
package memmonitor

import (
	"bufio"
	"context"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hideme/pdf-redact-engine/syncutil"
)

// Config mirrors the tunables of the monitor this package is modeled on.
type Config struct {
	MemoryThreshold      float64       `validate:"gte=0,lte=100"`
	CriticalThreshold    float64       `validate:"gte=0,lte=100"`
	BatchMemoryThreshold float64       `validate:"gte=0,lte=100"`
	CheckInterval        time.Duration `validate:"gt=0"`
	MinGCInterval        time.Duration `validate:"gte=0"`
	EnableMonitoring     bool
	AdaptiveThresholds   bool
}

// DefaultConfig matches the base/critical/batch thresholds and the 5s
// sampling interval of the monitor this package ports.
func DefaultConfig() Config {
	return Config{
		MemoryThreshold:      80.0,
		CriticalThreshold:    90.0,
		BatchMemoryThreshold: 70.0,
		CheckInterval:        5 * time.Second,
		MinGCInterval:        60 * time.Second,
		EnableMonitoring:     true,
		AdaptiveThresholds:   true,
	}
}

// Stats is a point-in-time snapshot of what the monitor has observed.
type Stats struct {
	CurrentUsagePercent float64
	PeakUsagePercent    float64
	AvailableMemoryMB   float64
	ChecksCount         uint64
	LastGC              time.Time
	MemoryThreshold     float64
	CriticalThreshold   float64
}

// Monitor samples process/system memory on an interval and adjusts its
// own thresholds based on the machine it finds itself on, the same way
// the monitor it is grounded on re-derives thresholds from total system
// memory rather than trusting one fixed percentage everywhere.
type Monitor struct {
	cfg Config

	lock *syncutil.TimeoutLock

	mu                sync.Mutex
	baseThreshold     float64
	baseCritical      float64
	memoryThreshold   float64
	criticalThreshold float64
	peakUsage         float64
	checksCount       uint64
	lastGC            time.Time
	sampleCount       int

	onCleanup []func()

	stopCh chan struct{}
	doneCh chan struct{}
}

// New constructs a Monitor. Call Start to begin background sampling.
func New(cfg Config, stats *syncutil.LockStatistics) *Monitor {
	m := &Monitor{
		cfg:               cfg,
		lock:              syncutil.NewTimeoutLock("memory_monitor_lock", syncutil.PriorityMedium, true, 5*time.Second, nil, stats),
		baseThreshold:     cfg.MemoryThreshold,
		baseCritical:      cfg.CriticalThreshold,
		memoryThreshold:   cfg.MemoryThreshold,
		criticalThreshold: cfg.CriticalThreshold,
		lastGC:            time.Now(),
	}
	if cfg.AdaptiveThresholds {
		m.adjustThresholdsForSystem()
	}
	return m
}

// OnCleanup registers a callback invoked whenever the monitor decides
// memory pressure warrants clearing caller-held caches (the response
// cache registers here so it gets swept under sustained pressure).
func (m *Monitor) OnCleanup(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onCleanup = append(m.onCleanup, fn)
}

// Start launches the background sampling loop. It is a no-op if
// EnableMonitoring is false or the monitor is already running.
func (m *Monitor) Start(ctx context.Context) {
	if !m.cfg.EnableMonitoring || m.stopCh != nil {
		return
	}
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	go m.loop(ctx)
}

// Stop halts the background sampling loop and waits for it to exit.
func (m *Monitor) Stop() {
	if m.stopCh == nil {
		return
	}
	close(m.stopCh)
	<-m.doneCh
	m.stopCh = nil
}

func (m *Monitor) loop(ctx context.Context) {
	defer close(m.doneCh)
	ticker := time.NewTicker(m.cfg.CheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.sample()
		}
	}
}

// sample takes one reading and applies the cleanup policy.
func (m *Monitor) sample() {
	if !m.lock.Acquire(context.Background(), "memmonitor", 0) {
		return
	}
	defer m.lock.Release("memmonitor")

	usagePercent, availableMB := readSystemMemory()

	m.mu.Lock()
	m.checksCount++
	if usagePercent > m.peakUsage {
		m.peakUsage = usagePercent
	}
	m.sampleCount++
	adaptive := m.cfg.AdaptiveThresholds && m.sampleCount%60 == 0
	critical := m.criticalThreshold
	regular := m.memoryThreshold
	m.mu.Unlock()

	if adaptive {
		m.adjustThresholdsForSystem()
	}

	switch {
	case usagePercent >= critical:
		m.runGC(true)
	case usagePercent >= regular:
		m.runGC(false)
	}
	_ = availableMB
}

// runGC performs a GC pass no more often than MinGCInterval, always
// invoking registered cleanup callbacks (clearing the response cache
// among them) and escalating to a second, post-cleanup collection under
// the critical threshold.
func (m *Monitor) runGC(emergency bool) {
	m.mu.Lock()
	if time.Since(m.lastGC) < m.cfg.MinGCInterval {
		m.mu.Unlock()
		return
	}
	m.lastGC = time.Now()
	cleanups := append([]func(){}, m.onCleanup...)
	m.mu.Unlock()

	runtime.GC()
	for _, fn := range cleanups {
		fn()
	}
	if emergency {
		runtime.GC()
	}
}

// adjustThresholdsForSystem re-derives memoryThreshold/criticalThreshold
// from total system memory, the same bucketing the monitor this package
// ports uses: small machines get more headroom before the threshold
// trips, large machines are allowed to run hotter before it matters.
func (m *Monitor) adjustThresholdsForSystem() {
	totalMB := totalSystemMemoryMB()
	totalGB := totalMB / 1024.0

	m.mu.Lock()
	defer m.mu.Unlock()

	threshold, critical := m.baseThreshold, m.baseCritical
	switch {
	case totalGB > 0 && totalGB < 4:
		threshold = maxF(60, m.baseThreshold-20)
		critical = maxF(75, m.baseCritical-15)
	case totalGB >= 4 && totalGB <= 8:
		threshold = maxF(70, m.baseThreshold-10)
		critical = maxF(85, m.baseCritical-5)
	case totalGB > 16:
		threshold = minF(85, m.baseThreshold+5)
		critical = minF(95, m.baseCritical+5)
	}

	usagePercent, _ := readSystemMemory()
	if usagePercent > 70 {
		threshold = maxF(threshold-5, m.baseThreshold*0.7)
		critical = maxF(critical-5, m.baseCritical*0.8)
	}

	m.memoryThreshold = threshold
	m.criticalThreshold = critical
}

// Snapshot returns the monitor's current view of memory pressure.
func (m *Monitor) Snapshot() Stats {
	usagePercent, availableMB := readSystemMemory()
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		CurrentUsagePercent: usagePercent,
		PeakUsagePercent:    m.peakUsage,
		AvailableMemoryMB:   availableMB,
		ChecksCount:         m.checksCount,
		LastGC:              m.lastGC,
		MemoryThreshold:     m.memoryThreshold,
		CriticalThreshold:   m.criticalThreshold,
	}
}

// ShouldThrottleBatch reports whether the caller's batch-oriented work
// (page batching, parallel fan-out) should shrink itself because usage
// has crossed BatchMemoryThreshold, distinct from and lower than the
// regular/critical thresholds that trigger GC.
func (m *Monitor) ShouldThrottleBatch() bool {
	usagePercent, _ := readSystemMemory()
	return usagePercent >= m.cfg.BatchMemoryThreshold
}

// Optimized runs fn, then triggers a GC pass if the call grew process
// RSS by more than thresholdMB — the same before/after delta measurement
// the decorator this package is grounded on performs around a unit of
// work, minus the per-function historical averaging that decorator adds
// on top (a cache-population heuristic out of scope for this port).
func (m *Monitor) Optimized(thresholdMB float64, fn func() error) error {
	before := processRSSMB()
	err := fn()
	after := processRSSMB()
	if after-before > thresholdMB {
		m.runGC(false)
	}
	return err
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// readSystemMemory returns (usedPercent, availableMB) for the whole
// machine. On Linux it parses /proc/meminfo; elsewhere — and on any
// parse failure — it falls back to an approximation from the Go
// runtime's MemStats.Sys so the monitor degrades gracefully rather than
// refusing to run.
func readSystemMemory() (usedPercent float64, availableMB float64) {
	if runtime.GOOS == "linux" {
		if total, avail, ok := readProcMeminfo(); ok && total > 0 {
			used := total - avail
			return (used / total) * 100.0, avail / 1024.0
		}
	}
	var rt runtime.MemStats
	runtime.ReadMemStats(&rt)
	allocMB := float64(rt.Sys) / (1024 * 1024)
	return minF(100, allocMB/8), 1024
}

func readProcMeminfo() (totalKB, availableKB float64, ok bool) {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, 0, false
	}
	defer f.Close()

	var total, available float64
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "MemTotal:"):
			total = parseMeminfoValue(line)
		case strings.HasPrefix(line, "MemAvailable:"):
			available = parseMeminfoValue(line)
		}
	}
	if total == 0 {
		return 0, 0, false
	}
	return total, available, true
}

func parseMeminfoValue(line string) float64 {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0
	}
	v, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0
	}
	return v
}

// totalSystemMemoryMB returns total system memory, used only for
// threshold-bucketing; without a readable /proc/meminfo it assumes 8192 MB.
func totalSystemMemoryMB() float64 {
	if runtime.GOOS == "linux" {
		if total, _, ok := readProcMeminfo(); ok && total > 0 {
			return total / 1024.0
		}
	}
	return 8192
}

// processRSSMB reads this process's resident set size from
// /proc/self/status, falling back to Go heap allocation when
// unavailable (non-Linux, sandboxed environments).
func processRSSMB() float64 {
	if runtime.GOOS == "linux" {
		f, err := os.Open("/proc/self/status")
		if err == nil {
			defer f.Close()
			sc := bufio.NewScanner(f)
			for sc.Scan() {
				line := sc.Text()
				if strings.HasPrefix(line, "VmRSS:") {
					return parseMeminfoValue(line) / 1024.0
				}
			}
		}
	}
	var rt runtime.MemStats
	runtime.ReadMemStats(&rt)
	return float64(rt.HeapAlloc) / (1024 * 1024)
}
