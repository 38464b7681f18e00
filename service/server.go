// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	xtract "github.com/hideme/pdf-redact-engine"
	"github.com/hideme/pdf-redact-engine/detect"
	"github.com/hideme/pdf-redact-engine/docmodel"
	"github.com/hideme/pdf-redact-engine/hybrid"
	"github.com/hideme/pdf-redact-engine/logger"
	"github.com/hideme/pdf-redact-engine/memmonitor"
	"github.com/hideme/pdf-redact-engine/respcache"
	"github.com/hideme/pdf-redact-engine/retention"
)

// Server wires the extraction, redaction, detection, caching and
// retention components into the HTTP surface that cmd/server/main.go
// starts listening on.
type Server struct {
	cfg Config

	extractor *xtract.Extractor
	redactor  *xtract.Redactor
	cache     *respcache.Cache
	keeper    *retention.Keeper
	mon       *memmonitor.Monitor
	hybridOrc *hybrid.Orchestrator
	// detectors maps an engine key ("gl", "hm", ...) to the detector
	// backing /ml/<key>_detect and /ai/detect's default engine.
	detectors map[string]hybrid.Detector

	limiter *rateLimiter

	startedAt time.Time
}

// NewServer constructs a Server from already-built components. A nil
// cache, keeper, or mon disables that concern rather than panicking,
// so a minimal deployment can omit what it doesn't need.
func NewServer(cfg Config, extractor *xtract.Extractor, redactor *xtract.Redactor, cache *respcache.Cache, keeper *retention.Keeper, mon *memmonitor.Monitor, hybridOrc *hybrid.Orchestrator, detectors map[string]hybrid.Detector) *Server {
	return &Server{
		cfg:       cfg,
		extractor: extractor,
		redactor:  redactor,
		cache:     cache,
		keeper:    keeper,
		mon:       mon,
		hybridOrc: hybridOrc,
		detectors: detectors,
		limiter:   newRateLimiter(cfg),
		startedAt: time.Now(),
	}
}

// Routes builds the chi router. Security headers and CORS wrap every
// response; rate limiting and request-id tagging wrap every route
// underneath.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))
	r.Use(securityHeaders(s.cfg))
	r.Use(cors(s.cfg))
	r.Use(s.limiter.middleware)

	r.Route("/pdf", func(r chi.Router) {
		r.Post("/extract", s.handleExtract)
		r.Post("/redact", s.handleRedact)
	})

	r.Route("/ai", func(r chi.Router) {
		r.Post("/detect", s.handleDetect(""))
	})
	r.Route("/ml", func(r chi.Router) {
		r.Post("/detect", s.handleDetect(""))
		r.Post("/gl_detect", s.handleDetect("gl"))
		r.Post("/hm_detect", s.handleDetect("hm"))
	})

	r.Route("/batch", func(r chi.Router) {
		r.Post("/extract", s.handleBatchExtract)
		r.Post("/detect", s.handleBatchDetect(""))
		r.Post("/hybrid_detect", s.handleBatchHybridDetect)
		r.Post("/redact", s.handleBatchRedact)
		r.Post("/search", s.handleBatchSearch)
		r.Post("/find_words", s.handleBatchFindWords)
	})

	r.Get("/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)
	r.Get("/readiness", s.handleReadiness)

	root := r
	r.Route("/help", func(r chi.Router) {
		r.Get("/engines", s.handleHelpEngines)
		r.Get("/entities", s.handleHelpEntities)
		r.Get("/entity-examples", s.handleHelpEntityExamples)
		r.Get("/detectors-status", s.handleHelpDetectorsStatus)
		r.Get("/routes", s.handleHelpRoutes(root))
	})

	return r
}

// --- multipart helpers -----------------------------------------------

func firstFilePart(r *http.Request, field string) (*multipart.FileHeader, []byte, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, nil, NewValidationError("failed to parse multipart form", err)
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, nil, NewValidationError("missing file field \""+field+"\"", nil)
	}
	fh := r.MultipartForm.File[field][0]
	f, err := fh.Open()
	if err != nil {
		return nil, nil, NewValidationError("failed to open uploaded file", err)
	}
	defer f.Close()
	body, err := ReadAllWithValidation(f)
	if err != nil {
		return nil, nil, err
	}
	return fh, body, nil
}

func allFileParts(r *http.Request, field string) ([]uploadedFile, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, NewValidationError("failed to parse multipart form", err)
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, NewValidationError("missing file field \""+field+"\"", nil)
	}
	files := make([]uploadedFile, 0, len(r.MultipartForm.File[field]))
	for _, fh := range r.MultipartForm.File[field] {
		f, err := fh.Open()
		if err != nil {
			return nil, NewValidationError("failed to open uploaded file "+fh.Filename, err)
		}
		body, err := ReadAllWithValidation(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		files = append(files, uploadedFile{Name: fh.Filename, Body: body})
	}
	return files, nil
}

func requestedEntities(r *http.Request) []string {
	v := r.FormValue("requested_entities")
	if v == "" {
		return nil
	}
	return splitAndTrim(v)
}

func minScore(r *http.Request) float64 {
	v := r.FormValue("threshold")
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Error("service: failed to marshal response", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeJSONCached marshals v, serves it, and stores it under key for
// subsequent callers presenting the same cache key, honoring an
// X-Cache-TTL the handler may have already set on w's headers.
func (s *Server) writeJSONCached(w http.ResponseWriter, r *http.Request, key string, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		WriteError(w, r, NewPersistenceFailureError("failed to marshal response", err))
		return
	}
	etag := etagFor(body)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
	} else {
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}
	if s.cache != nil {
		s.cache.Set(r.Context(), key, docmodel.CacheEntry{
			Content:    body,
			StatusCode: status,
			Headers:    map[string]string{"Content-Type": "application/json"},
			MediaType:  "application/json",
			ETag:       etag,
		}, cacheTTLOverride(w.Header(), s.cfg.CacheTTL))
	}
}

func (s *Server) tryServeCached(w http.ResponseWriter, r *http.Request, key string) bool {
	if s.cache == nil {
		return false
	}
	entry, ok := s.cache.Get(key)
	if !ok {
		return false
	}
	serveCached(w, r, entry)
	return true
}

func newBatchID() string {
	buf := make([]byte, 6)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func (s *Server) record(opType string, entityTypes []string, elapsed time.Duration, fileCount, entityCount int, success bool) {
	if s.keeper == nil {
		return
	}
	s.keeper.RecordProcessing(opType, "pdf", entityTypes, elapsed.Seconds(), fileCount, entityCount, success)
}

// --- /pdf/extract ------------------------------------------------------

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	fh, body, err := firstFilePart(r, "file")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	key := cacheKeyFor(r, []string{digestFilePart("file", body)})
	if s.tryServeCached(w, r, key) {
		return
	}

	data := s.extractor.Extract(r.Context(), xtract.Source{Bytes: body, Path: fh.Filename})
	s.record("extract", nil, time.Since(start), 1, 0, data.Error == "" && !data.Timeout)
	s.writeJSONCached(w, r, key, http.StatusOK, data)
}

// --- /pdf/redact -------------------------------------------------------

func (s *Server) handleRedact(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	fh, body, err := firstFilePart(r, "file")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	mappingRaw := r.FormValue("mapping")
	if mappingRaw == "" {
		WriteError(w, r, NewValidationError("missing \"mapping\" form field", nil))
		return
	}
	var mapping docmodel.RedactionMapping
	if err := json.Unmarshal([]byte(mappingRaw), &mapping); err != nil {
		WriteError(w, r, NewValidationError("invalid redaction mapping JSON", err))
		return
	}

	opts := xtract.RedactOptions{RedactImages: r.FormValue("redact_images") == "true"}
	out, err := s.redactor.Redact(r.Context(), xtract.Source{Bytes: body, Path: fh.Filename}, mapping, opts, "")
	if err != nil {
		s.record("redact", nil, time.Since(start), 1, 0, false)
		WriteError(w, r, NewPersistenceFailureError("redaction failed", err))
		return
	}
	entityCount := 0
	for _, p := range mapping.Pages {
		entityCount += len(p.Sensitive)
	}
	s.record("redact", nil, time.Since(start), 1, entityCount, true)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="redacted.pdf"`)
	w.Header().Set("ETag", etagFor(out))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// --- /ai/detect, /ml/detect, /ml/gl_detect, /ml/hm_detect ---------------

// handleDetect returns a handler bound to a single named engine, or, if
// engineKey is empty, to whichever engine the request names via its
// "engine" form field (defaulting to the first configured one).
func (s *Server) handleDetect(engineKey string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		key := engineKey
		if key == "" {
			key = r.FormValue("engine")
		}
		det, err := s.resolveDetector(key)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		fh, body, err := firstFilePart(r, "file")
		if err != nil {
			WriteError(w, r, err)
			return
		}
		entities := requestedEntities(r)
		cacheKey := cacheKeyFor(r, []string{digestFilePart("file", body)})
		if s.tryServeCached(w, r, cacheKey) {
			return
		}

		data := s.extractor.Extract(r.Context(), xtract.Source{Bytes: body, Path: fh.Filename})
		foundEntities, mapping := det.DetectSensitiveDataAsync(r.Context(), data, entities)

		if ms := minScore(r); ms > 0 {
			if filtered, err := detect.FilterByScore(foundEntities, ms); err == nil {
				foundEntities = filtered.([]docmodel.Entity)
			}
			if filtered, err := detect.FilterByScore(mapping, ms); err == nil {
				mapping = filtered.(docmodel.RedactionMapping)
			}
		}

		result := struct {
			Entities []docmodel.Entity        `json:"entities"`
			Mapping  docmodel.RedactionMapping `json:"redaction_mapping"`
		}{Entities: foundEntities, Mapping: mapping}

		s.record("detect", entities, time.Since(start), 1, len(foundEntities), true)
		s.writeJSONCached(w, r, cacheKey, http.StatusOK, result)
	}
}

func (s *Server) resolveDetector(key string) (hybrid.Detector, error) {
	if key == "" {
		for _, det := range s.detectors {
			return det, nil
		}
		return nil, NewValidationError("no detection engines are configured", nil)
	}
	det, ok := s.detectors[key]
	if !ok {
		return nil, NewValidationError("unknown detection engine \""+key+"\"", nil)
	}
	return det, nil
}

// --- /batch/* ------------------------------------------------------------

func (s *Server) handleBatchExtract(w http.ResponseWriter, r *http.Request) {
	files, err := allFileParts(r, "files")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	summary := s.runBatch(r.Context(), newBatchID(), files, func(ctx context.Context, f uploadedFile) (interface{}, error) {
		data := s.extractor.Extract(ctx, xtract.Source{Bytes: f.Body, Path: f.Name})
		if data.Timeout {
			return nil, fmt.Errorf("extraction timed out")
		}
		return data, nil
	})
	s.record("batch_extract", nil, time.Duration(summary.TotalTime*float64(time.Second)), summary.TotalFiles, 0, summary.Failed == 0)
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleBatchDetect(engineKey string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := engineKey
		if key == "" {
			key = r.FormValue("engine")
		}
		det, err := s.resolveDetector(key)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		entities := requestedEntities(r)
		files, err := allFileParts(r, "files")
		if err != nil {
			WriteError(w, r, err)
			return
		}
		summary := s.runBatch(r.Context(), newBatchID(), files, func(ctx context.Context, f uploadedFile) (interface{}, error) {
			data := s.extractor.Extract(ctx, xtract.Source{Bytes: f.Body, Path: f.Name})
			foundEntities, mapping := det.DetectSensitiveDataAsync(ctx, data, entities)
			return struct {
				Entities []docmodel.Entity        `json:"entities"`
				Mapping  docmodel.RedactionMapping `json:"redaction_mapping"`
			}{foundEntities, mapping}, nil
		})
		writeJSON(w, http.StatusOK, summary)
	}
}

func (s *Server) handleBatchHybridDetect(w http.ResponseWriter, r *http.Request) {
	if s.hybridOrc == nil {
		WriteError(w, r, NewValidationError("hybrid detection is not configured", nil))
		return
	}
	entities := requestedEntities(r)
	files, err := allFileParts(r, "files")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	summary := s.runBatch(r.Context(), newBatchID(), files, func(ctx context.Context, f uploadedFile) (interface{}, error) {
		data := s.extractor.Extract(ctx, xtract.Source{Bytes: f.Body, Path: f.Name})
		foundEntities, mapping := s.hybridOrc.DetectSensitiveDataAsync(ctx, data, entities)
		return struct {
			Entities []docmodel.Entity        `json:"entities"`
			Mapping  docmodel.RedactionMapping `json:"redaction_mapping"`
		}{foundEntities, mapping}, nil
	})
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleBatchRedact(w http.ResponseWriter, r *http.Request) {
	mappingRaw := r.FormValue("mapping")
	if mappingRaw == "" {
		WriteError(w, r, NewValidationError("missing \"mapping\" form field", nil))
		return
	}
	var mapping docmodel.RedactionMapping
	if err := json.Unmarshal([]byte(mappingRaw), &mapping); err != nil {
		WriteError(w, r, NewValidationError("invalid redaction mapping JSON", err))
		return
	}
	opts := xtract.RedactOptions{RedactImages: r.FormValue("redact_images") == "true"}

	files, err := allFileParts(r, "files")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	summary := s.runBatch(r.Context(), newBatchID(), files, func(ctx context.Context, f uploadedFile) (interface{}, error) {
		out, err := s.redactor.Redact(ctx, xtract.Source{Bytes: f.Body, Path: f.Name}, mapping, opts, "")
		if err != nil {
			return nil, err
		}
		return map[string]string{"content_base64": encodeBase64(out)}, nil
	})
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleBatchSearch(w http.ResponseWriter, r *http.Request) {
	query := r.FormValue("query")
	files, err := allFileParts(r, "files")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	summary := s.runBatch(r.Context(), newBatchID(), files, func(ctx context.Context, f uploadedFile) (interface{}, error) {
		data := s.extractor.Extract(ctx, xtract.Source{Bytes: f.Body, Path: f.Name})
		return searchText(data, query), nil
	})
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleBatchFindWords(w http.ResponseWriter, r *http.Request) {
	words := splitAndTrim(r.FormValue("words"))
	files, err := allFileParts(r, "files")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	summary := s.runBatch(r.Context(), newBatchID(), files, func(ctx context.Context, f uploadedFile) (interface{}, error) {
		data := s.extractor.Extract(ctx, xtract.Source{Bytes: f.Body, Path: f.Name})
		return findWords(data, words), nil
	})
	writeJSON(w, http.StatusOK, summary)
}

// --- status/health/metrics/readiness ------------------------------------

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	key := cacheKeyFor(r, nil)
	if s.tryServeCached(w, r, key) {
		return
	}
	status := struct {
		Status    string          `json:"status"`
		UptimeSec float64         `json:"uptime_seconds"`
		Cache     *respcache.Stats `json:"cache,omitempty"`
		Retention *retention.Stats `json:"retention,omitempty"`
		Memory    *memmonitor.Stats `json:"memory,omitempty"`
		Hybrid    *hybrid.Status  `json:"hybrid,omitempty"`
	}{
		Status:    "ok",
		UptimeSec: time.Since(s.startedAt).Seconds(),
	}
	if s.cache != nil {
		st := s.cache.Stats()
		status.Cache = &st
	}
	if s.keeper != nil {
		st := s.keeper.GetRecordStats()
		status.Retention = &st
	}
	if s.mon != nil {
		st := s.mon.Snapshot()
		status.Memory = &st
	}
	if s.hybridOrc != nil {
		st := s.hybridOrc.Status()
		status.Hybrid = &st
	}
	s.writeJSONCached(w, r, key, http.StatusOK, status)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	key := cacheKeyFor(r, nil)
	if s.tryServeCached(w, r, key) {
		return
	}
	metrics := map[string]interface{}{
		"uptime_seconds": time.Since(s.startedAt).Seconds(),
	}
	if s.cache != nil {
		metrics["cache"] = s.cache.Stats()
	}
	if s.mon != nil {
		metrics["memory"] = s.mon.Snapshot()
	}
	s.writeJSONCached(w, r, key, http.StatusOK, metrics)
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if s.extractor == nil || s.redactor == nil {
		WriteError(w, r, NewResourceExhaustionError("core components are not yet initialized", nil))
		return
	}
	if s.mon != nil && s.mon.ShouldThrottleBatch() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "throttled"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// --- /help/* ---------------------------------------------------------

func (s *Server) handleHelpEngines(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(s.detectors))
	for k := range s.detectors {
		names = append(names, k)
	}
	sort.Strings(names)
	body, err := json.Marshal(map[string]interface{}{"engines": names, "hybrid_available": s.hybridOrc != nil})
	if err != nil {
		WriteError(w, r, NewPersistenceFailureError("failed to marshal response", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", etagFor(body))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleHelpEntities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"entities": {
			"PERSON", "EMAIL_ADDRESS", "PHONE_NUMBER", "LOCATION",
			"ORGANIZATION", "DATE_TIME", "CREDIT_CARD", "IBAN_CODE",
			"NATIONAL_ID", "IP_ADDRESS",
		},
	})
}

func (s *Server) handleHelpEntityExamples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"PERSON":        "Jane Doe",
		"EMAIL_ADDRESS": "jane.doe@example.com",
		"PHONE_NUMBER":  "+1 555 0100",
		"LOCATION":      "Oslo, Norway",
		"CREDIT_CARD":   "4111 1111 1111 1111",
		"IP_ADDRESS":    "192.0.2.1",
	})
}

func (s *Server) handleHelpDetectorsStatus(w http.ResponseWriter, r *http.Request) {
	statuses := make(map[string]docmodel.DetectorStatus, len(s.detectors))
	for name, det := range s.detectors {
		statuses[name] = det.Status()
	}
	writeJSON(w, http.StatusOK, statuses)
}

func (s *Server) handleHelpRoutes(router chi.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var routes []string
		_ = chi.Walk(router, func(method, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
			routes = append(routes, method+" "+route)
			return nil
		})
		sort.Strings(routes)
		writeJSON(w, http.StatusOK, map[string][]string{"routes": routes})
	}
}

func encodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}
