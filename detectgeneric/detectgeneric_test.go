// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package detectgeneric

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hideme/pdf-redact-engine/detect"
	"github.com/hideme/pdf-redact-engine/docmodel"
)

type stubModel struct {
	predictions []Prediction
	calls       int
}

func (m *stubModel) PredictEntities(ctx context.Context, text string, entities []string, threshold float64) ([]Prediction, error) {
	m.calls++
	return m.predictions, nil
}

type stubLoader struct {
	localExists bool
	model       Model
}

func (l *stubLoader) CheckLocal(modelDirPath, configFileName string) bool { return l.localExists }
func (l *stubLoader) LoadLocal(ctx context.Context, modelDirPath, configFileName string) (Model, error) {
	return l.model, nil
}
func (l *stubLoader) Download(ctx context.Context, modelName string) (Model, error) {
	return l.model, nil
}
func (l *stubLoader) Save(model Model, dir string) error { return nil }

type stubRecorder struct {
	calls int
}

func (r *stubRecorder) RecordProcessing(opType, docType string, entityTypes []string, processingTime float64, fileCount, entityCount int, success bool) {
	r.calls++
}

func newTestDetector(t *testing.T, model Model) *Detector {
	t.Helper()
	cfg := EngineConfig{
		EngineName:      "teststub" + t.Name(),
		ModelName:       "stub-model-" + t.Name(),
		DefaultEntities: []string{"person", "email"},
		ModelDirPath:    t.TempDir(),
		CacheNamespace:  "test",
		ConfigFileName:  "config.json",
	}
	d := NewDetector(cfg, &stubLoader{localExists: false, model: model}, "", false, nil, nil)
	d.retryDelay = 0
	return d
}

func TestNewDetector_InitializesModelViaLoader(t *testing.T) {
	d := newTestDetector(t, &stubModel{})
	assert.NotNil(t, d.getModel())
	assert.True(t, d.isInitialized)
}

func TestSplitSentences_SplitsOnPunctuation(t *testing.T) {
	sentences := splitSentences("Hello there. How are you? Fine!")
	require.Len(t, sentences, 3)
	assert.Equal(t, "Hello there.", sentences[0])
	assert.Equal(t, "How are you?", sentences[1])
}

func TestSplitIntoSentenceGroups_PacksUnderMaxLen(t *testing.T) {
	groups := splitIntoSentenceGroups("One. Two. Three.", 8)
	for _, g := range groups {
		assert.LessOrEqual(t, len(g), 8)
	}
}

func TestSplitIntoSentenceGroups_SplitsOverlongSentence(t *testing.T) {
	longSentence := ""
	for i := 0; i < 50; i++ {
		longSentence += "word "
	}
	groups := splitIntoSentenceGroups(longSentence, 20)
	require.NotEmpty(t, groups)
	for _, g := range groups {
		assert.LessOrEqual(t, len(g), 20)
	}
}

func TestDedupeRawEntities_KeepsHighestScore(t *testing.T) {
	entities := []detect.RawEntity{
		{Label: "person", Start: 0, End: 4, Score: 0.5},
		{Label: "person", Start: 0, End: 4, Score: 0.9},
	}
	deduped := dedupeRawEntities(entities)
	require.Len(t, deduped, 1)
	assert.Equal(t, 0.9, deduped[0].Score)
}

func TestFilterNorwegianPronouns_RemovesPronounOnlyPerson(t *testing.T) {
	entities := []detect.RawEntity{
		{Label: "person", Text: "Han"},
		{Label: "person", Text: "John Smith"},
	}
	filtered := filterNorwegianPronouns(entities)
	require.Len(t, filtered, 1)
	assert.Equal(t, "John Smith", filtered[0].Text)
}

func TestDetectSensitiveDataAsync_NoEntitiesReturnsEmpty(t *testing.T) {
	d := newTestDetector(t, &stubModel{})
	entities, mapping := d.DetectSensitiveDataAsync(context.Background(), docmodel.ExtractedData{}, []string{})
	assert.Nil(t, entities)
	assert.Empty(t, mapping.Pages)
}

func TestDetectSensitiveDataAsync_EmptyPageYieldsEmptySensitiveEntry(t *testing.T) {
	d := newTestDetector(t, &stubModel{})
	data := docmodel.ExtractedData{Pages: []docmodel.Page{{PageNumber: 1, Words: nil}}}
	_, mapping := d.DetectSensitiveDataAsync(context.Background(), data, nil)
	require.Len(t, mapping.Pages, 1)
	assert.Equal(t, 1, mapping.Pages[0].Page)
	assert.Empty(t, mapping.Pages[0].Sensitive)
}

func TestDetectSensitiveDataAsync_FindsEntityOnContentPage(t *testing.T) {
	model := &stubModel{predictions: []Prediction{{Label: "person", Start: 0, End: 4, Score: 0.9, Text: "John"}}}
	d := newTestDetector(t, model)
	data := docmodel.ExtractedData{Pages: []docmodel.Page{
		{PageNumber: 1, Words: []docmodel.Word{{Text: "John", BBox: docmodel.BoundingBox{X1: 5, Y1: 5}}}},
	}}
	entities, mapping := d.DetectSensitiveDataAsync(context.Background(), data, []string{"person"})
	require.Len(t, entities, 1)
	require.Len(t, mapping.Pages, 1)
	require.Len(t, mapping.Pages[0].Sensitive, 1)
	assert.Greater(t, model.calls, 0)
}

func TestRecorder_RecordProcessingCalledOnFailure(t *testing.T) {
	rec := &stubRecorder{}
	cfg := EngineConfig{EngineName: "recordertest", ModelName: "m", DefaultEntities: []string{"person"}, ModelDirPath: t.TempDir()}
	d := NewDetector(cfg, &stubLoader{localExists: false, model: &stubModel{}}, "", false, rec, nil)
	d.DetectSensitiveDataAsync(context.Background(), docmodel.ExtractedData{}, []string{})
	assert.Greater(t, rec.calls, 0)
}
