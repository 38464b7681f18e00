// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package service

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hideme/pdf-redact-engine/docmodel"
)

func TestCacheKeyFor_StableUnderQueryParamReordering(t *testing.T) {
	r1 := httptest.NewRequest("GET", "/status?b=2&a=1", nil)
	r2 := httptest.NewRequest("GET", "/status?a=1&b=2", nil)
	assert.Equal(t, cacheKeyFor(r1, nil), cacheKeyFor(r2, nil))
}

func TestCacheKeyFor_DiffersByPath(t *testing.T) {
	r1 := httptest.NewRequest("GET", "/status", nil)
	r2 := httptest.NewRequest("GET", "/health", nil)
	assert.NotEqual(t, cacheKeyFor(r1, nil), cacheKeyFor(r2, nil))
}

func TestCacheKeyFor_DiffersByFileDigest(t *testing.T) {
	r := httptest.NewRequest("POST", "/pdf/extract", nil)
	k1 := cacheKeyFor(r, []string{digestFilePart("file", []byte("aaa"))})
	k2 := cacheKeyFor(r, []string{digestFilePart("file", []byte("bbb"))})
	assert.NotEqual(t, k1, k2)
}

func TestServeCached_ReturnsNotModifiedWhenETagMatches(t *testing.T) {
	body := []byte(`{"status":"ok"}`)
	etag := etagFor(body)
	entry := docmodel.CacheEntry{Content: body, StatusCode: 200, MediaType: "application/json", ETag: etag}

	r := httptest.NewRequest("GET", "/status", nil)
	r.Header.Set("If-None-Match", etag)
	rec := httptest.NewRecorder()

	serveCached(rec, r, entry)

	assert.Equal(t, 304, rec.Code)
}

func TestServeCached_ReturnsBodyWhenETagDoesNotMatch(t *testing.T) {
	body := []byte(`{"status":"ok"}`)
	entry := docmodel.CacheEntry{Content: body, StatusCode: 200, MediaType: "application/json", ETag: etagFor(body)}

	r := httptest.NewRequest("GET", "/status", nil)
	rec := httptest.NewRecorder()

	serveCached(rec, r, entry)

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, body, rec.Body.Bytes())
}

func TestCacheTTLOverride_UsesHeaderWhenPresentAndValid(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.Header().Set("X-Cache-TTL", "42")
	assert.Equal(t, 42*time.Second, cacheTTLOverride(rec.Header(), 300*time.Second))
}

func TestCacheTTLOverride_FallsBackOnInvalidHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.Header().Set("X-Cache-TTL", "not-a-number")
	assert.Equal(t, 300*time.Second, cacheTTLOverride(rec.Header(), 300*time.Second))
}
