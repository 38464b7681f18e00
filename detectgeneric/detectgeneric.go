// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package detectgeneric implements the shared lifecycle every concrete
// NER engine (GLiNER-style, HIDEME-style, …) rides on: singleton model
// loading with double-checked init and a process-wide model cache,
// sentence-bounded chunking, a per-engine analyzer lock around model
// inference, result caching, and the Norwegian-pronoun false-positive
// filter.
package detectgeneric

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hideme/pdf-redact-engine/detect"
	"github.com/hideme/pdf-redact-engine/docmodel"
	"github.com/hideme/pdf-redact-engine/logger"
	"github.com/hideme/pdf-redact-engine/minimize"
	"github.com/hideme/pdf-redact-engine/parallel"
	"github.com/hideme/pdf-redact-engine/syncutil"
)

// Prediction is one hit returned by a concrete model's predict call,
// offsets relative to the chunk of text it was run against.
type Prediction struct {
	Label string
	Start int
	End   int
	Score float64
	Text  string
}

// Model is the engine-specific NER model, abstracted behind an
// interface since the model itself is out of scope here: building and
// shipping it is not this engine's job.
type Model interface {
	PredictEntities(ctx context.Context, text string, entities []string, threshold float64) ([]Prediction, error)
}

// Loader resolves a Model from local files or by download, and can
// persist a freshly downloaded model back to a local directory.
type Loader interface {
	CheckLocal(modelDirPath, configFileName string) bool
	LoadLocal(ctx context.Context, modelDirPath, configFileName string) (Model, error)
	Download(ctx context.Context, modelName string) (Model, error)
	Save(model Model, dir string) error
}

// Recorder is the subset of retention.Keeper this package depends on,
// kept as an interface so tests don't need a real records directory.
type Recorder interface {
	RecordProcessing(opType, docType string, entityTypes []string, processingTime float64, fileCount, entityCount int, success bool)
}

// EngineConfig is what a concrete engine ("GLiNER", "HIDEME", …)
// supplies: its identity, default scope, and where its model lives.
type EngineConfig struct {
	EngineName      string
	ModelName       string
	DefaultEntities []string
	ModelDirPath    string
	CacheNamespace  string
	ConfigFileName  string
	// ValidateRequestedEntities filters/validates a caller-supplied
	// entity list. A nil func passes the list through unchanged.
	ValidateRequestedEntities func([]string) ([]string, error)
}

var norwegianPronouns = map[string]bool{}

func init() {
	for _, w := range []string{
		"jeg", "du", "han", "hun", "vi", "dere", "de",
		"meg", "deg", "ham", "henne", "den", "det", "oss", "dem",
		"min", "mi", "mitt", "mine", "din", "di", "ditt", "dine",
		"hans", "hennes", "dens", "dets", "vår", "vårt", "våre",
		"deres", "sin", "si", "sitt", "sine",
		"seg", "selv",
		"denne", "dette", "disse",
		"hvem", "hva", "hvilken", "hvilket", "hvilke",
		"noen", "noe", "ingen", "ingenting", "alle", "enhver", "ethvert", "hver", "hvert",
		"som",
	} {
		norwegianPronouns[w] = true
	}
}

var personEntityTypes = map[string]bool{"person": true, "per": true, "PERSON-H": true}

var errNoLoader = errors.New("detectgeneric: no model loader configured")

type cacheKey struct {
	modelName      string
	localFilesOnly bool
	entities       string
}

func newCacheKey(modelName string, localFilesOnly bool, entities []string) cacheKey {
	sorted := append([]string(nil), entities...)
	sort.Strings(sorted)
	return cacheKey{modelName: modelName, localFilesOnly: localFilesOnly, entities: strings.Join(sorted, ",")}
}

type modelCacheEntry struct {
	model        Model
	initTime     time.Time
	initDuration time.Duration
}

// The model lock and model cache are process-wide, shared by every
// engine's Detector — mirroring the base class's shared class
// attributes that every concrete subclass inherits rather than
// shadows. initGroup is what the original's "another thread is
// already initializing this model, wait up to 60s and reuse its
// result" polling loop becomes once a sibling-wait primitive already
// exists in the standard toolkit: concurrent initializeModel calls for
// the same cache key collapse onto one in-flight load, and every
// caller — leader and followers alike — receives its result directly
// instead of polling a flag and re-checking the cache on a timeout.
var (
	modelLockOnce sync.Once
	modelLockVal  *syncutil.TimeoutLock

	modelCacheMu sync.Mutex
	modelCache   = map[cacheKey]modelCacheEntry{}

	initGroup singleflight.Group
)

func (k cacheKey) groupKey() string {
	return fmt.Sprintf("%s|%v|%s", k.modelName, k.localFilesOnly, k.entities)
}

func modelLock(stats *syncutil.LockStatistics) *syncutil.TimeoutLock {
	modelLockOnce.Do(func() {
		modelLockVal = syncutil.NewTimeoutLock("generic_model_lock", syncutil.PriorityHigh, false, 600*time.Second, nil, stats)
	})
	return modelLockVal
}

// Detector is one engine's singleton lifecycle: model state, its own
// analyzer lock, and its own result cache. The cache belongs to the
// Detector value; CacheNamespace is not consulted, so two detectors with
// the same namespace do not share cached results.
type Detector struct {
	cfg            EngineConfig
	loader         Loader
	localModelPath string
	localFilesOnly bool
	recorder       Recorder
	retryDelay     time.Duration
	stats          *syncutil.LockStatistics

	analyzerLock *syncutil.TimeoutLock

	mu                  sync.Mutex
	model               Model
	isInitialized       bool
	initializationTime  time.Time
	initDuration        time.Duration
	lastUsed            time.Time
	totalCalls          int64
	totalEntitiesFound  int64
	totalProcessingTime time.Duration

	cacheMu sync.Mutex
	cache   map[string][]detect.RawEntity
}

// NewDetector constructs a detector and attempts to initialize its
// model synchronously, matching the original's eager __init__.
func NewDetector(cfg EngineConfig, loader Loader, localModelPath string, localFilesOnly bool, recorder Recorder, stats *syncutil.LockStatistics) *Detector {
	d := &Detector{
		cfg:            cfg,
		loader:         loader,
		localModelPath: localModelPath,
		localFilesOnly: localFilesOnly,
		recorder:       recorder,
		retryDelay:     2 * time.Second,
		stats:          stats,
		analyzerLock:   syncutil.NewTimeoutLock(strings.ToLower(cfg.EngineName)+"_analyzer_lock", syncutil.PriorityHigh, true, 600*time.Second, nil, stats),
		cache:          make(map[string][]detect.RawEntity),
	}
	d.initializeModel()
	return d
}

func (d *Detector) initializeModel() {
	key := newCacheKey(d.cfg.ModelName, d.localFilesOnly, d.cfg.DefaultEntities)
	if d.tryLoadFromCache(key, "") {
		return
	}

	v, err, shared := initGroup.Do(key.groupKey(), func() (interface{}, error) {
		if entry, ok := d.peekCache(key); ok {
			return entry, nil
		}
		lock := modelLock(d.stats)
		if !lock.Acquire(context.Background(), d.cfg.EngineName, 600*time.Second) {
			return nil, fmt.Errorf("detectgeneric: timeout acquiring model lock for %s", d.cfg.EngineName)
		}
		defer lock.Release(d.cfg.EngineName)

		if entry, ok := d.peekCache(key); ok {
			return entry, nil
		}
		return d.performModelInitialization(key, time.Now())
	})
	if shared {
		logger.Debug("detectgeneric: reused a concurrent sibling's model initialization", "engine", d.cfg.EngineName)
	}
	if err != nil {
		logger.Error("detectgeneric: model initialization failed", "engine", d.cfg.EngineName, "err", err)
		return
	}

	entry := v.(modelCacheEntry)
	d.mu.Lock()
	d.model = entry.model
	d.initializationTime = entry.initTime
	d.initDuration = entry.initDuration
	d.isInitialized = true
	d.lastUsed = time.Now()
	d.mu.Unlock()
}

func (d *Detector) peekCache(key cacheKey) (modelCacheEntry, bool) {
	modelCacheMu.Lock()
	defer modelCacheMu.Unlock()
	entry, ok := modelCache[key]
	return entry, ok
}

func (d *Detector) tryLoadFromCache(key cacheKey, reason string) bool {
	modelCacheMu.Lock()
	entry, ok := modelCache[key]
	modelCacheMu.Unlock()
	if !ok {
		return false
	}
	d.mu.Lock()
	d.model = entry.model
	d.initializationTime = entry.initTime
	d.initDuration = entry.initDuration
	d.isInitialized = true
	d.lastUsed = time.Now()
	d.mu.Unlock()
	logger.Debug("detectgeneric: loaded model from cache", "engine", d.cfg.EngineName, "reason", reason)
	return true
}

const maxInitRetries = 2

// performModelInitialization runs under the process-wide model lock and
// the per-key singleflight leadership: its result (or error) is handed
// to every caller that coalesced onto this key, not just the one that
// triggered it.
func (d *Detector) performModelInitialization(key cacheKey, start time.Time) (interface{}, error) {
	localExists := d.checkLocalModelExists()
	logger.Debug("detectgeneric: local model exists", "engine", d.cfg.EngineName, "exists", localExists)
	var lastErr error
	for attempt := 0; attempt < maxInitRetries; attempt++ {
		model, err := d.attemptModelInit(localExists, attempt)
		if err == nil && model != nil {
			now := time.Now()
			duration := now.Sub(start)
			entry := modelCacheEntry{model: model, initTime: now, initDuration: duration}

			modelCacheMu.Lock()
			modelCache[key] = entry
			modelCacheMu.Unlock()

			logger.Debug("detectgeneric: model initialized", "engine", d.cfg.EngineName, "elapsed", duration)
			return entry, nil
		}
		lastErr = err
		logger.Error("detectgeneric: attempt failed to load local model, will attempt download", "engine", d.cfg.EngineName, "attempt", attempt+1, "err", err)
		localExists = false
		d.localFilesOnly = false
		if attempt < maxInitRetries-1 {
			time.Sleep(d.retryDelay)
		}
	}
	if d.recorder != nil {
		d.recorder.RecordProcessing(strings.ToLower(d.cfg.EngineName)+"_model_initialization", "model", d.cfg.DefaultEntities, time.Since(start).Seconds(), 1, 0, false)
	}
	return nil, fmt.Errorf("detectgeneric: exhausted %d init attempts: %w", maxInitRetries, lastErr)
}

func (d *Detector) attemptModelInit(localExists bool, attempt int) (Model, error) {
	if d.loader == nil {
		return nil, errNoLoader
	}
	if localExists {
		model, err := d.loader.LoadLocal(context.Background(), d.cfg.ModelDirPath, d.cfg.ConfigFileName)
		if err == nil && model != nil {
			return model, nil
		}
		logger.Error("detectgeneric: failed to load local model, will attempt download", "engine", d.cfg.EngineName, "attempt", attempt+1, "err", err)
	}
	model, err := d.loader.Download(context.Background(), d.cfg.ModelName)
	if err != nil {
		return nil, err
	}
	if d.localModelPath != "" {
		if err := d.loader.Save(model, d.cfg.ModelDirPath); err != nil {
			logger.Error("detectgeneric: failed to save downloaded model", "engine", d.cfg.EngineName, "err", err)
		}
	}
	return model, nil
}

func (d *Detector) checkLocalModelExists() bool {
	if d.loader == nil {
		return false
	}
	return d.loader.CheckLocal(d.cfg.ModelDirPath, d.cfg.ConfigFileName)
}

func (d *Detector) getModel() Model {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.model
}

type pageInput struct {
	page     docmodel.Page
	fullText string
	offsets  []docmodel.WordOffset
}

type pageOutcome struct {
	redaction docmodel.PageRedaction
	entities  []docmodel.Entity
}

// DetectSensitiveDataAsync minimizes the input, validates the
// requested entity scope, fans out per-page model inference, and
// merges the results into a page-ordered redaction mapping plus a flat
// entity list.
func (d *Detector) DetectSensitiveDataAsync(ctx context.Context, data docmodel.ExtractedData, requestedEntities []string) ([]docmodel.Entity, docmodel.RedactionMapping) {
	start := time.Now()
	minimized := minimize.Minimize(data, nil, false)

	d.mu.Lock()
	d.totalCalls++
	d.lastUsed = time.Now()
	d.mu.Unlock()

	validated, err := d.validateEntities(requestedEntities)
	if err != nil {
		logger.Error("detectgeneric: entity validation failed", "engine", d.cfg.EngineName, "err", err)
		d.record(strings.ToLower(d.cfg.EngineName)+"_detection", "document", requestedEntities, time.Since(start), 0, false)
		return nil, docmodel.RedactionMapping{}
	}
	if len(validated) == 0 {
		logger.Debug("detectgeneric: no valid entities remain after filtering", "engine", d.cfg.EngineName)
		d.record(strings.ToLower(d.cfg.EngineName)+"_detection", "document", nil, time.Since(start), 0, false)
		return nil, docmodel.RedactionMapping{}
	}

	mapping := docmodel.RedactionMapping{}
	for _, p := range data.Pages {
		if !pageHasContent(p) {
			mapping.Pages = append(mapping.Pages, docmodel.PageRedaction{Page: p.PageNumber})
		}
	}
	var inputs []pageInput
	for _, p := range minimized.Pages {
		fullText, offsets := p.FullTextAndOffsets()
		inputs = append(inputs, pageInput{page: p, fullText: fullText, offsets: offsets})
	}
	if len(inputs) == 0 {
		return nil, mapping
	}

	results := parallel.ProcessPagesInParallel(ctx, inputs, func(ctx context.Context, in pageInput) (pageOutcome, error) {
		return d.processSinglePage(ctx, in, validated), nil
	}, 0)

	var combined []docmodel.Entity
	for _, r := range results {
		mapping.Pages = append(mapping.Pages, r.Value.redaction)
		combined = append(combined, r.Value.entities...)
	}
	sort.Slice(mapping.Pages, func(i, j int) bool { return mapping.Pages[i].Page < mapping.Pages[j].Page })

	d.record(strings.ToLower(d.cfg.EngineName)+"_detection", "document", validated, time.Since(start), len(combined), true)
	return combined, mapping
}

func pageHasContent(p docmodel.Page) bool {
	for _, w := range p.Words {
		if strings.TrimSpace(w.Text) != "" {
			return true
		}
	}
	return false
}

func (d *Detector) validateEntities(requested []string) ([]string, error) {
	if requested == nil {
		return d.cfg.DefaultEntities, nil
	}
	if d.cfg.ValidateRequestedEntities == nil {
		return requested, nil
	}
	return d.cfg.ValidateRequestedEntities(requested)
}

func (d *Detector) record(opType, docType string, entityTypes []string, elapsed time.Duration, entityCount int, success bool) {
	if d.recorder == nil {
		return
	}
	d.recorder.RecordProcessing(opType, docType, entityTypes, elapsed.Seconds(), 1, entityCount, success)
}

func (d *Detector) processSinglePage(ctx context.Context, in pageInput, entities []string) pageOutcome {
	pageStart := time.Now()
	if d.getModel() == nil {
		logger.Debug("detectgeneric: model not available, skipping page", "engine", d.cfg.EngineName, "page", in.page.PageNumber)
		return pageOutcome{redaction: docmodel.PageRedaction{Page: in.page.PageNumber}}
	}

	rawEntities := d.processText(in.fullText, entities)
	if len(rawEntities) == 0 {
		return pageOutcome{redaction: docmodel.PageRedaction{Page: in.page.PageNumber}}
	}

	batched := parallel.ProcessEntitiesInBatches(ctx, rawEntities, 10, func(ctx context.Context, batch []detect.RawEntity) ([]pairedEntity, error) {
		out := make([]pairedEntity, 0, len(batch))
		for _, raw := range batch {
			ents, sens := detect.ProcessSingleEntity(raw, in.fullText, in.page.PageNumber, in.offsets)
			if len(ents) == 0 {
				continue
			}
			out = append(out, pairedEntity{entity: ents[0], sensitive: sens[0]})
		}
		return out, nil
	})

	var processedEntities []docmodel.Entity
	var sensitiveItems []docmodel.SensitiveItem
	for _, pe := range batched {
		processedEntities = append(processedEntities, pe.entity)
		sensitiveItems = append(sensitiveItems, pe.sensitive)
	}

	d.record(strings.ToLower(d.cfg.EngineName)+"_page_processing", "page", entities, time.Since(pageStart), len(processedEntities), true)
	return pageOutcome{
		redaction: docmodel.PageRedaction{Page: in.page.PageNumber, Sensitive: sensitiveItems},
		entities:  processedEntities,
	}
}

type pairedEntity struct {
	entity    docmodel.Entity
	sensitive docmodel.SensitiveItem
}

// processText is the per-page model driver: cache lookup, paragraph
// batching, sentence-group chunking, model calls, dedup, and the
// Norwegian-pronoun filter.
func (d *Detector) processText(text string, entities []string) []detect.RawEntity {
	key := textCacheKey(text, entities)
	if cached, ok := d.getCached(key); ok {
		logger.Debug("detectgeneric: using cached result", "engine", d.cfg.EngineName)
		return cached
	}
	if len(strings.TrimSpace(text)) < 3 {
		return nil
	}
	if d.getModel() == nil {
		logger.Error("detectgeneric: model not available", "engine", d.cfg.EngineName)
		return nil
	}

	paragraphs := nonEmptyLines(text)
	var all []detect.RawEntity
	const batchSize = 5
	for i := 0; i < len(paragraphs); i += batchSize {
		end := i + batchSize
		if end > len(paragraphs) {
			end = len(paragraphs)
		}
		all = append(all, d.processParagraphBatch(paragraphs[i:end], text, entities)...)
	}

	deduped := dedupeRawEntities(all)
	filtered := filterNorwegianPronouns(deduped)
	d.setCached(key, filtered)
	return filtered
}

func (d *Detector) processParagraphBatch(paragraphs []string, fullText string, entities []string) []detect.RawEntity {
	var all []detect.RawEntity
	for _, paragraph := range paragraphs {
		if strings.TrimSpace(paragraph) == "" {
			continue
		}
		baseOffset := strings.Index(fullText, paragraph)
		if baseOffset == -1 {
			continue
		}
		for _, group := range splitIntoSentenceGroups(paragraph, 800) {
			groupOffset := strings.Index(paragraph, group)
			if groupOffset == -1 {
				continue
			}
			all = append(all, d.extractEntitiesForGroup(group, entities, baseOffset+groupOffset)...)
		}
	}
	return all
}

func (d *Detector) extractEntitiesForGroup(group string, entities []string, absoluteOffset int) []detect.RawEntity {
	if !d.analyzerLock.Acquire(context.Background(), d.cfg.EngineName, 600*time.Second) {
		logger.Error("detectgeneric: timeout acquiring model analyzer lock", "engine", d.cfg.EngineName)
		return nil
	}
	defer d.analyzerLock.Release(d.cfg.EngineName)

	model := d.getModel()
	if model == nil {
		return nil
	}
	preds, err := model.PredictEntities(context.Background(), group, entities, 0.40)
	if err != nil {
		logger.Error("detectgeneric: predict_entities failed", "engine", d.cfg.EngineName, "err", err)
		return nil
	}
	out := make([]detect.RawEntity, 0, len(preds))
	for _, p := range preds {
		out = append(out, detect.RawEntity{
			Label: p.Label,
			Start: absoluteOffset + p.Start,
			End:   absoluteOffset + p.End,
			Score: p.Score,
			Text:  p.Text,
		})
	}
	return out
}

func (d *Detector) getCached(key string) ([]detect.RawEntity, bool) {
	d.cacheMu.Lock()
	defer d.cacheMu.Unlock()
	v, ok := d.cache[key]
	return v, ok
}

func (d *Detector) setCached(key string, entities []detect.RawEntity) {
	d.cacheMu.Lock()
	defer d.cacheMu.Unlock()
	d.cache[key] = entities
}

func textCacheKey(text string, entities []string) string {
	sorted := append([]string(nil), entities...)
	sort.Strings(sorted)
	sum := md5.Sum([]byte(text + "|" + strings.Join(sorted, ",")))
	return hex.EncodeToString(sum[:])
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

// sentenceBoundary matches a sentence terminator followed by whitespace;
// Go's RE2 engine has no lookbehind, so the terminator is consumed and
// kept with the preceding sentence rather than matched by a zero-width
// assertion the way the original's `(?<=[.!?])\s+` does.
var sentenceBoundary = regexp.MustCompile(`[.!?]\s+`)

func splitSentences(text string) []string {
	locs := sentenceBoundary.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []string{text}
	}
	var sentences []string
	start := 0
	for _, loc := range locs {
		sentences = append(sentences, text[start:loc[0]+1])
		start = loc[1]
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}

// splitIntoSentenceGroups greedily packs sentences into groups up to
// maxLen characters; any single sentence longer than maxLen is split
// on word boundaries instead.
func splitIntoSentenceGroups(text string, maxLen int) []string {
	sentences := splitSentences(text)
	var groups []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			groups = append(groups, cur.String())
			cur.Reset()
		}
	}
	for _, s := range sentences {
		if len(s) > maxLen {
			flush()
			groups = append(groups, splitWordBounded(s, maxLen)...)
			continue
		}
		if cur.Len() > 0 && cur.Len()+1+len(s) > maxLen {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(s)
	}
	flush()
	return groups
}

func splitWordBounded(text string, maxLen int) []string {
	words := strings.Fields(text)
	var chunks []string
	var cur strings.Builder
	for _, w := range words {
		if cur.Len() > 0 && cur.Len()+1+len(w) > maxLen {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(w)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

// dedupeRawEntities keeps, per (label, start, end), the highest-scoring
// hit — the generic form of whatever exact duplicate an overlapping
// sentence group or paragraph boundary can produce.
func dedupeRawEntities(entities []detect.RawEntity) []detect.RawEntity {
	type key struct {
		label string
		start int
		end   int
	}
	best := make(map[key]detect.RawEntity, len(entities))
	order := make([]key, 0, len(entities))
	for _, e := range entities {
		k := key{label: e.Label, start: e.Start, end: e.End}
		existing, ok := best[k]
		if !ok {
			order = append(order, k)
			best[k] = e
			continue
		}
		if e.Score > existing.Score {
			best[k] = e
		}
	}
	out := make([]detect.RawEntity, 0, len(order))
	for _, k := range order {
		out = append(out, best[k])
	}
	return out
}

func filterNorwegianPronouns(entities []detect.RawEntity) []detect.RawEntity {
	filtered := make([]detect.RawEntity, 0, len(entities))
	for _, e := range entities {
		if personEntityTypes[e.Label] {
			words := strings.Fields(strings.TrimSpace(e.Text))
			if len(words) > 0 && allPronouns(words) {
				continue
			}
		}
		filtered = append(filtered, e)
	}
	return filtered
}

func allPronouns(words []string) bool {
	for _, w := range words {
		if !norwegianPronouns[strings.ToLower(w)] {
			return false
		}
	}
	return true
}

// Status reports a detector singleton's lifecycle state.
func (d *Detector) Status() docmodel.DetectorStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	var lastUsed int64
	if !d.lastUsed.IsZero() {
		lastUsed = d.lastUsed.Unix()
	}
	return docmodel.DetectorStatus{
		Initialized:        d.isInitialized,
		InitializationTime: d.initDuration.Seconds(),
		LastUsed:           lastUsed,
		TotalCalls:         d.totalCalls,
		ModelAvailable:     d.model != nil,
		EngineName:         d.cfg.EngineName,
		ModelDirExists:     d.checkLocalModelExists(),
	}
}
