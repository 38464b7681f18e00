// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package service

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hideme/pdf-redact-engine/docmodel"
)

// cacheKeyFor builds the cache key: method, path, sorted query string,
// Accept and Accept-Encoding, plus — for a multipart POST — a digest of
// the uploaded field names and each file part's sha256, so two
// byte-identical uploads collapse to the same cache entry while two
// different files under the same field name never collide.
func cacheKeyFor(r *http.Request, fileDigests []string) string {
	var b strings.Builder
	b.WriteString(r.Method)
	b.WriteByte('|')
	b.WriteString(r.URL.Path)
	b.WriteByte('|')

	q := r.URL.Query()
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		vs := append([]string(nil), q[k]...)
		sort.Strings(vs)
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strings.Join(vs, ","))
		b.WriteByte('&')
	}
	b.WriteByte('|')
	b.WriteString(r.Header.Get("Accept"))
	b.WriteByte('|')
	b.WriteString(r.Header.Get("Accept-Encoding"))

	if len(fileDigests) > 0 {
		sorted := append([]string(nil), fileDigests...)
		sort.Strings(sorted)
		b.WriteByte('|')
		b.WriteString(strings.Join(sorted, ","))
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// digestFilePart returns the sha256 of one uploaded file's bytes,
// prefixed with its field name, for use in cacheKeyFor's file digest
// list.
func digestFilePart(fieldName string, content []byte) string {
	sum := sha256.Sum256(content)
	return fieldName + ":" + hex.EncodeToString(sum[:])
}

func etagFor(body []byte) string {
	sum := sha256.Sum256(body)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

// serveCached writes a cached response, honoring If-None-Match with a
// bare 304 when the caller already holds the current body.
func serveCached(w http.ResponseWriter, r *http.Request, cached docmodel.CacheEntry) {
	for k, v := range cached.Headers {
		w.Header().Set(k, v)
	}
	if cached.ETag != "" {
		w.Header().Set("ETag", cached.ETag)
		if match := r.Header.Get("If-None-Match"); match != "" && match == cached.ETag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	w.Header().Set("Content-Type", cached.MediaType)
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Content)
}

// cacheTTLOverride reads X-Cache-TTL off the response the handler is
// about to cache, falling back to the cache's own default when absent
// or invalid.
func cacheTTLOverride(header http.Header, fallback time.Duration) time.Duration {
	v := header.Get("X-Cache-TTL")
	if v == "" {
		return fallback
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}
