// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package service

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xtract "github.com/hideme/pdf-redact-engine"
	"github.com/hideme/pdf-redact-engine/hybrid"
	"github.com/hideme/pdf-redact-engine/respcache"
	"github.com/hideme/pdf-redact-engine/syncutil"
)

func newServerForTest(t *testing.T) *Server {
	t.Helper()
	stats := syncutil.NewLockStatistics()
	manager := syncutil.NewLockManager(stats)
	cache := respcache.New(respcache.Config{
		MaxEntries: 100, DefaultTTL: 300_000_000_000, CleanupPeriod: 60_000_000_000, WriteLockTimeout: 5_000_000_000,
	}, manager, stats)
	t.Cleanup(cache.Close)

	srv := NewServer(
		DefaultConfig(),
		xtract.NewExtractor(xtract.DefaultExtractConfig(), stats),
		xtract.NewRedactor(xtract.DefaultRedactConfig(), stats),
		cache,
		nil,
		nil,
		nil,
		map[string]hybrid.Detector{},
	)
	return srv
}

func TestHealth_ReturnsHealthy(t *testing.T) {
	srv := newServerForTest(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestSecurityHeaders_AreAlwaysSet(t *testing.T) {
	srv := newServerForTest(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestStatus_ReportsUptimeAndCacheStats(t *testing.T) {
	srv := newServerForTest(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/status", nil)
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "uptime_seconds")
}

func TestStatus_SecondRequestServesFromCacheWithETag(t *testing.T) {
	srv := newServerForTest(t)
	router := srv.Routes()

	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, httptest.NewRequest("GET", "/status", nil))
	etag := rec1.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req2 := httptest.NewRequest("GET", "/status", nil)
	req2.Header.Set("If-None-Match", etag)
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)

	assert.Equal(t, 304, rec2.Code)
}

func TestHelpRoutes_ListsKnownEndpoints(t *testing.T) {
	srv := newServerForTest(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/help/routes", nil)
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "/pdf/extract")
	assert.Contains(t, rec.Body.String(), "/health")
}

func TestExtract_RejectsNonPDFUpload(t *testing.T) {
	srv := newServerForTest(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "not-a-pdf.txt")
	require.NoError(t, err)
	_, _ = part.Write([]byte("just some plain text, not a pdf at all"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/pdf/extract", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "not a PDF")
}

func TestExtract_MissingFileFieldIsValidationError(t *testing.T) {
	srv := newServerForTest(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/pdf/extract", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDetect_UnknownEngineIsRejected(t *testing.T) {
	srv := newServerForTest(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/ml/gl_detect", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
