// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hideme/pdf-redact-engine/syncutil"
)

func TestExtractor_MissingFileReturnsError(t *testing.T) {
	e := NewExtractor(DefaultExtractConfig(), nil)
	result := e.Extract(context.Background(), Source{Path: "/nonexistent/path.pdf"})
	assert.NotEmpty(t, result.Error)
	assert.False(t, result.Timeout)
}

func TestExtractor_SingleDocumentAtATime(t *testing.T) {
	stats := syncutil.NewLockStatistics()
	lock := syncutil.NewTimeoutLock("extractor_instance", syncutil.PriorityHigh, true, 20*time.Millisecond, nil, stats)

	ok := lock.Acquire(context.Background(), "holder", 0)
	assert.True(t, ok)
	defer lock.Release("holder")

	cfg := DefaultExtractConfig()
	e := &Extractor{cfg: cfg, lock: lock}
	result := e.Extract(context.Background(), Source{Path: "/nonexistent/path.pdf"})
	assert.True(t, result.Timeout)
}
