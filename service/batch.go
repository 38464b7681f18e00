// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package service

import (
	"context"
	"time"

	"github.com/hideme/pdf-redact-engine/parallel"
)

// BatchSummary is the envelope every /batch/* endpoint returns,
// wrapping one FileResult per uploaded file.
type BatchSummary struct {
	BatchID    string       `json:"batch_id"`
	TotalFiles int          `json:"total_files"`
	Successful int          `json:"successful"`
	Failed     int          `json:"failed"`
	TotalTime  float64      `json:"total_time"`
	Workers    int          `json:"workers,omitempty"`
	Results    []FileResult `json:"results"`
}

// FileResult is one file's outcome within a batch operation.
type FileResult struct {
	File    string      `json:"file"`
	Status  string      `json:"status"`
	Results interface{} `json:"results,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// uploadedFile is one multipart file part read into memory ahead of
// batch processing, so the worker pool never touches *http.Request.
type uploadedFile struct {
	Name string
	Body []byte
}

// runBatch fans work out across an adaptively-sized worker pool,
// throttled down when the memory monitor reports the process is under
// pressure, and assembles a BatchSummary in the original file order.
func (s *Server) runBatch(ctx context.Context, batchID string, files []uploadedFile, fn func(context.Context, uploadedFile) (interface{}, error)) BatchSummary {
	start := time.Now()

	workers := 0
	if s.mon != nil && s.mon.ShouldThrottleBatch() {
		workers = 1
	}

	results := parallel.ProcessInParallel(ctx, files, func(ctx context.Context, f uploadedFile) (FileResult, error) {
		out, err := fn(ctx, f)
		if err != nil {
			return FileResult{File: f.Name, Status: "error", Error: err.Error()}, nil
		}
		return FileResult{File: f.Name, Status: "success", Results: out}, nil
	}, parallel.Options{
		MaxWorkers:   workers,
		ItemTimeout:  60 * time.Second,
		BatchTimeout: 10 * time.Minute,
		OperationID:  batchID,
		Monitor:      s.mon,
	})

	summary := BatchSummary{
		BatchID:    batchID,
		TotalFiles: len(files),
		Results:    make([]FileResult, len(files)),
	}
	for i, r := range results {
		if !r.OK {
			summary.Results[i] = FileResult{File: files[i].Name, Status: "error", Error: "processing timed out"}
			summary.Failed++
			continue
		}
		summary.Results[i] = r.Value
		if r.Value.Status == "success" {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}
	summary.TotalTime = time.Since(start).Seconds()
	return summary
}
