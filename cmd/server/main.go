// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	xtract "github.com/hideme/pdf-redact-engine"
	"github.com/hideme/pdf-redact-engine/hybrid"
	"github.com/hideme/pdf-redact-engine/logger"
	"github.com/hideme/pdf-redact-engine/memmonitor"
	"github.com/hideme/pdf-redact-engine/respcache"
	"github.com/hideme/pdf-redact-engine/retention"
	"github.com/hideme/pdf-redact-engine/service"
	"github.com/hideme/pdf-redact-engine/syncutil"
)

// main wires every extraction, redaction, detection, caching and
// retention component into a long-lived server: one shared
// LockStatistics feeds every instance lock so /status can report the
// whole synchronization hierarchy at once.
func main() {
	logger.SetLogger(func(level logger.LogLevel, msg string, keyvals ...interface{}) {
		os.Stderr.WriteString(string(level) + ": " + msg + "\n")
	})

	cfg := service.LoadConfigFromEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		logger.Error("service: invalid configuration", "err", err)
		os.Exit(1)
	}

	stats := syncutil.NewLockStatistics()
	manager := syncutil.NewLockManager(stats)

	extractor := xtract.NewExtractor(xtract.DefaultExtractConfig(), stats)
	redactor := xtract.NewRedactor(xtract.DefaultRedactConfig(), stats)

	cache := respcache.New(respcache.Config{
		MaxEntries:       cfg.CacheMaxEntries,
		DefaultTTL:       cfg.CacheTTL,
		CleanupPeriod:    cfg.CacheCleanupInterval,
		WriteLockTimeout: 5 * time.Second,
	}, manager, stats)
	defer cache.Close()

	recordsDir := os.Getenv("RETENTION_RECORDS_DIR")
	if recordsDir == "" {
		recordsDir = "./data/retention"
	}
	keeper, err := retention.New(retention.Config{RecordsDir: recordsDir, RetentionDays: cfg.RetentionDays})
	if err != nil {
		logger.Error("service: failed to initialize retention keeper", "err", err)
		os.Exit(1)
	}

	mon := memmonitor.New(memmonitor.Config{
		MemoryThreshold:      cfg.MemoryThreshold,
		CriticalThreshold:    cfg.CriticalMemoryThreshold,
		BatchMemoryThreshold: cfg.MemoryThreshold - 10,
		CheckInterval:        cfg.MemoryCheckInterval,
		MinGCInterval:        60 * time.Second,
		EnableMonitoring:     cfg.EnableMemoryMonitoring,
		AdaptiveThresholds:   cfg.AdaptiveMemoryThresholds,
	}, stats)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mon.Start(ctx)
	defer mon.Stop()

	// Concrete NER engines ("gl" for GLiNER, "hm" for HIDEME) each need
	// a Loader that can fetch or load their model; that backend is
	// intentionally out of scope here, the same way detectgeneric.Model
	// itself is abstracted behind an interface rather than shipped.
	// Deployments that supply a Loader register it into this map before
	// calling Routes.
	detectors := map[string]hybrid.Detector{}
	var hybridOrc *hybrid.Orchestrator
	if len(detectors) > 0 {
		all := make([]hybrid.Detector, 0, len(detectors))
		for _, d := range detectors {
			all = append(all, d)
		}
		hybridOrc = hybrid.New(all)
	}

	srv := service.NewServer(cfg, extractor, redactor, cache, keeper, mon, hybridOrc, detectors)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Debug("service: listening", "addr", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("service: server exited with error", "err", err)
		os.Exit(1)
	}
}
