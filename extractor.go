// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hideme/pdf-redact-engine/docmodel"
	"github.com/hideme/pdf-redact-engine/logger"
	"github.com/hideme/pdf-redact-engine/syncutil"
)

// ExtractConfig controls page-batching and time budgets for Extractor.
type ExtractConfig struct {
	PageBatchSize       int           `validate:"gt=0"`
	BatchThreshold      int           `validate:"gt=0"`
	PerPageTimeBudget   time.Duration `validate:"gt=0"`
	PerBatchTimeBudget  time.Duration `validate:"gt=0"`
	InstanceLockTimeout time.Duration `validate:"gt=0"`
}

// DefaultExtractConfig matches spec: batches of 20 pages once a document
// exceeds 10 pages, a 60s instance-lock timeout.
func DefaultExtractConfig() ExtractConfig {
	return ExtractConfig{
		PageBatchSize:       20,
		BatchThreshold:      10,
		PerPageTimeBudget:   5 * time.Second,
		PerBatchTimeBudget:  60 * time.Second,
		InstanceLockTimeout: 60 * time.Second,
	}
}

// Extractor extracts word-level, bbox-annotated content from a PDF. The
// bulk of its work runs under a single per-instance lock so one document
// is never processed by two goroutines concurrently.
type Extractor struct {
	cfg  ExtractConfig
	lock *syncutil.TimeoutLock
}

// NewExtractor constructs an Extractor with its own instance lock.
func NewExtractor(cfg ExtractConfig, stats *syncutil.LockStatistics) *Extractor {
	return &Extractor{
		cfg:  cfg,
		lock: syncutil.NewTimeoutLock("extractor_instance", syncutil.PriorityHigh, true, cfg.InstanceLockTimeout, nil, stats),
	}
}

// Source identifies the input PDF: exactly one of Path or Bytes should
// be set.
type Source struct {
	Path  string
	Bytes []byte
}

// Extract opens src and walks every page, grouping characters into
// words with bounding boxes. Pages whose only words are whitespace are
// recorded in EmptyPages and skipped. On instance-lock timeout or a
// fatal open/parse error, it returns a result with Timeout or Error set
// rather than propagating the failure.
func (e *Extractor) Extract(ctx context.Context, src Source) docmodel.ExtractedData {
	owner := "extractor." + src.Path
	if !e.lock.Acquire(ctx, owner, 0) {
		return docmodel.ExtractedData{Timeout: true, Error: "timed out waiting for document instance lock"}
	}
	defer e.lock.Release(owner)

	f, r, err := e.open(src)
	if err != nil {
		logger.Error("extract: failed to open document", "path", src.Path, "err", err)
		return docmodel.ExtractedData{Error: fmt.Sprintf("open document: %v", err)}
	}
	if f != nil {
		defer f.Close()
	}

	total := r.NumPage()
	if total == 0 {
		return docmodel.ExtractedData{TotalDocumentPages: 0}
	}

	batchSize := e.cfg.PageBatchSize
	if total <= e.cfg.BatchThreshold {
		batchSize = total
	}

	var pages []docmodel.Page
	var emptyPages []int

	for start := 1; start <= total; start += batchSize {
		end := start + batchSize - 1
		if end > total {
			end = total
		}
		batchDeadline := time.Now().Add(e.cfg.PerBatchTimeBudget)
		for pageNum := start; pageNum <= end; pageNum++ {
			if time.Now().After(batchDeadline) {
				logger.Debug("extract: batch time budget exceeded, continuing to next batch", "batch_start", start, "batch_end", end, "stopped_at", pageNum, true)
				break
			}
			page, empty := e.extractPage(r, pageNum)
			if empty {
				emptyPages = append(emptyPages, pageNum)
				continue
			}
			pages = append(pages, page)
		}
	}

	meta := e.sanitizedMetadata(r)

	return docmodel.ExtractedData{
		Pages:              pages,
		EmptyPages:         emptyPages,
		ContentPages:       len(pages),
		TotalDocumentPages: total,
		Metadata:           meta,
	}
}

func (e *Extractor) extractPage(r *Reader, pageNum int) (docmodel.Page, bool) {
	start := time.Now()
	page := r.Page(pageNum)
	if page.V.IsNull() {
		return docmodel.Page{PageNumber: pageNum, Error: "null page"}, false
	}

	content := page.Content()
	words := wordsFromContent(content.Text)

	if time.Since(start) > e.cfg.PerPageTimeBudget {
		logger.Debug("extract: page exceeded time budget", "page", pageNum, "elapsed", time.Since(start), true)
	}

	if len(words) == 0 {
		return docmodel.Page{}, true
	}
	return docmodel.Page{PageNumber: pageNum, Words: words}, false
}

// sanitizedMetadata flattens MetadataFull into the plain string map the
// extracted-data envelope carries. Only structural fields (version,
// encryption, page count, XMP/collection flags, language) are kept; the
// identity-bearing Info/XMP fields such as title and author are dropped.
func (e *Extractor) sanitizedMetadata(r *Reader) map[string]string {
	full, err := r.MetadataFull()
	if err != nil {
		logger.Debug("extract: metadata read failed", "err", err, true)
		return map[string]string{}
	}
	return map[string]string{
		"pdf_version":    full.PDFVersion,
		"encrypted":      strconv.FormatBool(full.Encrypted),
		"num_pages":      strconv.Itoa(full.NPages),
		"has_xmp":        strconv.FormatBool(full.HasXMP),
		"has_collection": strconv.FormatBool(full.HasCollection),
		"language":       full.Language,
	}
}

func (e *Extractor) open(src Source) (*os.File, *Reader, error) {
	if src.Path != "" {
		return Open(src.Path)
	}
	r, err := NewReader(bytes.NewReader(src.Bytes), int64(len(src.Bytes)))
	return nil, r, err
}
