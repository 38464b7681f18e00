// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package hybrid wraps up to four concrete entity detectors behind one
// async call, running them concurrently, tolerating any single
// detector's timeout or panic, and merging their per-page redaction
// mappings into one combined result.
package hybrid

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hideme/pdf-redact-engine/docmodel"
	"github.com/hideme/pdf-redact-engine/logger"
	"github.com/hideme/pdf-redact-engine/syncutil"
)

// perDetectorTimeout bounds how long any one detector may run before its
// outcome is discarded as a failure; the others continue regardless.
const perDetectorTimeout = 120 * time.Second

const detectorLockTimeout = 30 * time.Second

// Detector is the shape every engine wrapped by the hybrid orchestrator
// must satisfy. detectgeneric.Detector already implements it.
type Detector interface {
	DetectSensitiveDataAsync(ctx context.Context, data docmodel.ExtractedData, requestedEntities []string) ([]docmodel.Entity, docmodel.RedactionMapping)
	Status() docmodel.DetectorStatus
}

// outcome is one detector's result from a single detection run,
// equivalent to the original's {engine, success, entities, mapping, time}.
type outcome struct {
	engine   string
	success  bool
	entities []docmodel.Entity
	mapping  docmodel.RedactionMapping
	elapsed  time.Duration
}

// Orchestrator runs a fixed set of detectors in parallel and merges
// their results. It holds no per-call state beyond its detector list,
// so a single instance may be shared across concurrent requests; the
// detector lock below only guards its own status/lifecycle reporting.
type Orchestrator struct {
	detectors []Detector

	mu   sync.Mutex
	lock *syncutil.TimeoutLock

	totalEntitiesDetected int64
}

// New builds an orchestrator over the given detectors, in the order
// they should be reported. A nil or empty slice is valid: the
// orchestrator simply returns empty results.
func New(detectors []Detector) *Orchestrator {
	return &Orchestrator{
		detectors: detectors,
		lock:      syncutil.NewTimeoutLock("hybrid_detector_lock", syncutil.PriorityMedium, true, detectorLockTimeout, nil, nil),
	}
}

// DetectSensitiveDataAsync runs every configured detector concurrently,
// each under its own 120s budget, and merges the successful outcomes.
// A detector that times out or panics contributes nothing; it
// never prevents the others from completing.
func (o *Orchestrator) DetectSensitiveDataAsync(ctx context.Context, data docmodel.ExtractedData, requestedEntities []string) ([]docmodel.Entity, docmodel.RedactionMapping) {
	if len(o.detectors) == 0 {
		return nil, docmodel.RedactionMapping{Pages: []docmodel.PageRedaction{}}
	}

	start := time.Now()
	outcomes := o.runAllDetectors(ctx, data, requestedEntities)
	entities, mappings, successCount, failureCount := processOutcomes(outcomes)

	combined := mergeMappings(mappings)
	if failureCount > 0 {
		logger.Error("hybrid: one or more detectors failed", "succeeded", successCount, "failed", failureCount)
	}

	totalPages := len(combined.Pages)
	o.mu.Lock()
	o.totalEntitiesDetected += int64(len(entities))
	o.mu.Unlock()
	logger.Debug("hybrid: detection complete", "entities", len(entities), "pages", totalPages, "elapsed", time.Since(start))

	return entities, combined
}

// runAllDetectors fans each configured detector out onto its own
// goroutine via errgroup, each bounded by perDetectorTimeout. A
// detector that panics is recovered and reported as a failed outcome
// rather than crashing the whole request, mirroring the original's
// blanket exception catch around each task.
func (o *Orchestrator) runAllDetectors(ctx context.Context, data docmodel.ExtractedData, requestedEntities []string) []outcome {
	results := make([]outcome, len(o.detectors))

	g, gctx := errgroup.WithContext(ctx)
	for i, det := range o.detectors {
		i, det := i, det
		g.Go(func() error {
			results[i] = runSingleDetector(gctx, det, data, requestedEntities)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// runSingleDetector runs one detector under its own timeout, catching
// both context deadline expiry and a recovered panic as a failure.
func runSingleDetector(ctx context.Context, det Detector, data docmodel.ExtractedData, requestedEntities []string) (result outcome) {
	engineName := engineNameOf(det)
	result.engine = engineName

	taskCtx, cancel := context.WithTimeout(ctx, perDetectorTimeout)
	defer cancel()

	type detResult struct {
		entities []docmodel.Entity
		mapping  docmodel.RedactionMapping
		ok       bool
	}
	done := make(chan detResult, 1)
	start := time.Now()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("hybrid: detector panicked", "engine", engineName, "panic", r)
				done <- detResult{ok: false}
			}
		}()
		entities, mapping := det.DetectSensitiveDataAsync(taskCtx, data, requestedEntities)
		done <- detResult{entities: entities, mapping: mapping, ok: true}
	}()

	select {
	case r := <-done:
		result.elapsed = time.Since(start)
		result.success = r.ok
		result.entities = r.entities
		result.mapping = r.mapping
		if !r.ok {
			logger.Error("hybrid: detector failed", "engine", engineName)
		}
	case <-taskCtx.Done():
		result.elapsed = time.Since(start)
		result.success = false
		logger.Error("hybrid: detector timed out", "engine", engineName, "timeout", perDetectorTimeout)
	}
	return result
}

func engineNameOf(det Detector) string {
	return det.Status().EngineName
}

// processOutcomes separates successful outcomes from failures, exactly
// as the original's _process_detection_results: entities and mappings
// are gathered only from detectors that succeeded.
func processOutcomes(outcomes []outcome) (entities []docmodel.Entity, mappings []docmodel.RedactionMapping, successCount, failureCount int) {
	for _, o := range outcomes {
		if !o.success {
			failureCount++
			continue
		}
		successCount++
		entities = append(entities, o.entities...)
		mappings = append(mappings, o.mapping)
	}
	if len(outcomes) > 0 {
		logger.Debug("hybrid: per-detector outcomes processed", "succeeded", successCount, "failed", failureCount)
	}
	return entities, mappings, successCount, failureCount
}

// mergeMappings concatenates the sensitive-item list for each page
// number across every successful detector's mapping, then returns pages
// sorted ascending by page number.
func mergeMappings(mappings []docmodel.RedactionMapping) docmodel.RedactionMapping {
	byPage := make(map[int][]docmodel.SensitiveItem)
	for _, m := range mappings {
		for _, pr := range m.Pages {
			byPage[pr.Page] = append(byPage[pr.Page], pr.Sensitive...)
		}
	}

	pages := make([]docmodel.PageRedaction, 0, len(byPage))
	for page, sensitive := range byPage {
		pages = append(pages, docmodel.PageRedaction{Page: page, Sensitive: sensitive})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Page < pages[j].Page })

	return docmodel.RedactionMapping{Pages: pages}
}

// Status reports the orchestrator's detector count and, best-effort,
// each wrapped detector's own status. A failure acquiring the status
// lock is reported rather than treated as fatal, matching the
// original's get_status runtime-error tolerance.
type Status struct {
	DetectorCount int                       `json:"detector_count"`
	Detectors     []docmodel.DetectorStatus `json:"detectors"`
	RuntimeError  string                    `json:"runtime_error,omitempty"`
}

func (o *Orchestrator) Status() Status {
	ctx, cancel := context.WithTimeout(context.Background(), detectorLockTimeout)
	defer cancel()

	if !o.lock.Acquire(ctx, "hybrid-status", detectorLockTimeout) {
		return Status{
			DetectorCount: len(o.detectors),
			RuntimeError:  "failed to acquire hybrid detector lock",
		}
	}
	defer o.lock.Release("hybrid-status")

	statuses := make([]docmodel.DetectorStatus, 0, len(o.detectors))
	for _, det := range o.detectors {
		statuses = append(statuses, det.Status())
	}
	return Status{DetectorCount: len(o.detectors), Detectors: statuses}
}
