// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package retention maintains an append-only, date-bucketed JSONL log
// of processing operations and deletes files older than a configured
// retention window.
package retention

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hideme/pdf-redact-engine/docmodel"
	"github.com/hideme/pdf-redact-engine/logger"
)

const (
	recordFilePrefix = "processing_record_"
	recordFileSuffix = ".jsonl"
	dateLayout       = "2006-01-02"
)

// Config controls where records are kept and how long they are kept for.
type Config struct {
	RecordsDir    string `validate:"required"`
	RetentionDays int    `validate:"min=1"`
}

// DefaultConfig matches the original's 90-day retention window.
func DefaultConfig(recordsDir string) Config {
	return Config{RecordsDir: recordsDir, RetentionDays: 90}
}

// Stats is a point-in-time, deep-copyable snapshot of the keeper's
// in-memory counters.
type Stats struct {
	TotalRecords   int            `json:"total_records"`
	RecordsByType  map[string]int `json:"records_by_type"`
	RecordsByDay   map[string]int `json:"records_by_day"`
	LastRecordTime string         `json:"last_record_time"`
}

// Keeper is the class-level-mutex-guarded singleton the original
// implements via __new__/_lock; here it is an ordinary value the
// caller constructs once and shares, since Go has no implicit
// module-level singleton state to fight with.
type Keeper struct {
	cfg Config
	mu  sync.Mutex

	totalRecords   int
	recordsByType  map[string]int
	recordsByDay   map[string]int
	lastRecordTime string
}

// New creates a Keeper, ensures its records directory exists, seeds its
// in-memory counters from any pre-existing record files, and runs one
// retention sweep.
func New(cfg Config) (*Keeper, error) {
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 90
	}
	if err := os.MkdirAll(cfg.RecordsDir, 0o755); err != nil {
		logger.Error("retention: failed to create records directory", "dir", cfg.RecordsDir, "err", err)
	}
	k := &Keeper{
		cfg:            cfg,
		recordsByType:  make(map[string]int),
		recordsByDay:   make(map[string]int),
		lastRecordTime: "N/A",
	}
	k.initializeStats()
	k.cleanupOldRecords()
	logger.Debug("retention: processing record keeper initialized", "dir", cfg.RecordsDir)
	return k, nil
}

func (k *Keeper) initializeStats() {
	entries, err := os.ReadDir(k.cfg.RecordsDir)
	if err != nil {
		logger.Error("retention: error listing record directory", "err", err)
		return
	}
	total := 0
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, recordFilePrefix) || !strings.HasSuffix(name, recordFileSuffix) {
			continue
		}
		count, err := countLines(filepath.Join(k.cfg.RecordsDir, name))
		if err != nil {
			logger.Error("retention: error processing record file", "file", name, "err", err)
			continue
		}
		total += count
		dateStr := dateFromFileName(name)
		k.recordsByDay[dateStr] = count
	}
	k.totalRecords = total
	logger.Debug("retention: found existing processing records", "count", total)
}

func countLines(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 0, nil
	}
	return strings.Count(string(data), "\n"), nil
}

func dateFromFileName(name string) string {
	s := strings.TrimPrefix(name, recordFilePrefix)
	return strings.TrimSuffix(s, recordFileSuffix)
}

// RecordProcessing appends one JSONL record for the given operation and
// updates in-memory counters. Matches the original's minimal-metadata
// GDPR Article 30 record shape.
func (k *Keeper) RecordProcessing(opType, docType string, entityTypes []string, processingTime float64, fileCount, entityCount int, success bool) {
	now := time.Now()
	operationID := computeOperationID(now, opType, docType)
	record := docmodel.ProcessingRecord{
		Timestamp:      now.Format(time.RFC3339Nano),
		OperationType:  opType,
		DocumentType:   docType,
		EntityTypes:    entityTypes,
		ProcessingTime: roundTo3(processingTime),
		FileCount:      fileCount,
		EntityCount:    entityCount,
		Success:        success,
		LegalBasis:     "legitimate_interests",
		OperationID:    operationID,
	}
	logger.Debug("retention: processing record created", "operation_type", opType)

	recordDate := now.Format(dateLayout)
	recordFile := filepath.Join(k.cfg.RecordsDir, recordFilePrefix+recordDate+recordFileSuffix)

	line, err := json.Marshal(record)
	if err != nil {
		logger.Error("retention: failed to marshal processing record", "err", err)
		return
	}
	f, err := os.OpenFile(recordFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		logger.Error("retention: failed to write processing record", "err", err)
		return
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		logger.Error("retention: failed to write processing record", "err", err)
		return
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.totalRecords++
	k.lastRecordTime = record.Timestamp
	k.recordsByType[opType]++
	k.recordsByDay[recordDate]++
}

func computeOperationID(ts time.Time, opType, docType string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s_%s_%s", ts.Format(time.RFC3339Nano), opType, docType)))
	return hex.EncodeToString(sum[:])[:16]
}

func roundTo3(v float64) float64 {
	const scale = 1000.0
	return float64(int64(v*scale+0.5)) / scale
}

// cleanupOldRecords deletes record files dated before the retention
// cutoff and reconciles the in-memory day/total counters.
func (k *Keeper) cleanupOldRecords() {
	cutoff := time.Now().AddDate(0, 0, -k.cfg.RetentionDays).Format(dateLayout)

	entries, err := os.ReadDir(k.cfg.RecordsDir)
	if err != nil {
		logger.Error("retention: error listing record directory for cleanup", "err", err)
		return
	}

	deleted := 0
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, recordFilePrefix) || !strings.HasSuffix(name, recordFileSuffix) {
			continue
		}
		dateStr := dateFromFileName(name)
		if dateStr >= cutoff {
			continue
		}
		if err := os.Remove(filepath.Join(k.cfg.RecordsDir, name)); err != nil {
			logger.Error("retention: error deleting record file", "file", name, "err", err)
			continue
		}
		deleted++
		if count, ok := k.recordsByDay[dateStr]; ok {
			k.totalRecords -= count
			delete(k.recordsByDay, dateStr)
		}
	}
	if deleted > 0 {
		logger.Debug("retention: deleted expired processing record files", "count", deleted, "retention_days", k.cfg.RetentionDays)
	}
}

// CleanupExpired runs one retention sweep on demand, e.g. from a
// background ticker.
func (k *Keeper) CleanupExpired() {
	k.cleanupOldRecords()
}

// GetRecordStats returns a deep copy of the keeper's in-memory counters
// so callers can't mutate shared state through the returned value.
func (k *Keeper) GetRecordStats() Stats {
	k.mu.Lock()
	defer k.mu.Unlock()
	byType := make(map[string]int, len(k.recordsByType))
	for k2, v := range k.recordsByType {
		byType[k2] = v
	}
	byDay := make(map[string]int, len(k.recordsByDay))
	for k2, v := range k.recordsByDay {
		byDay[k2] = v
	}
	return Stats{
		TotalRecords:   k.totalRecords,
		RecordsByType:  byType,
		RecordsByDay:   byDay,
		LastRecordTime: k.lastRecordTime,
	}
}
