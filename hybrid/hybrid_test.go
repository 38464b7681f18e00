// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package hybrid

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hideme/pdf-redact-engine/docmodel"
)

type stubDetector struct {
	name     string
	delay    time.Duration
	entities []docmodel.Entity
	mapping  docmodel.RedactionMapping
	panics   bool
}

func (s *stubDetector) DetectSensitiveDataAsync(ctx context.Context, data docmodel.ExtractedData, requestedEntities []string) ([]docmodel.Entity, docmodel.RedactionMapping) {
	if s.panics {
		panic("boom")
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
		}
	}
	return s.entities, s.mapping
}

func (s *stubDetector) Status() docmodel.DetectorStatus {
	return docmodel.DetectorStatus{EngineName: s.name}
}

func TestDetectSensitiveDataAsync_NoDetectorsReturnsEmpty(t *testing.T) {
	o := New(nil)
	entities, mapping := o.DetectSensitiveDataAsync(context.Background(), docmodel.ExtractedData{}, nil)
	assert.Nil(t, entities)
	assert.Empty(t, mapping.Pages)
}

func TestDetectSensitiveDataAsync_MergesSuccessfulDetectors(t *testing.T) {
	a := &stubDetector{
		name:     "a",
		entities: []docmodel.Entity{{EntityType: "email"}},
		mapping: docmodel.RedactionMapping{Pages: []docmodel.PageRedaction{
			{Page: 2, Sensitive: []docmodel.SensitiveItem{{EntityType: "email"}}},
		}},
	}
	b := &stubDetector{
		name:     "b",
		entities: []docmodel.Entity{{EntityType: "phone"}},
		mapping: docmodel.RedactionMapping{Pages: []docmodel.PageRedaction{
			{Page: 1, Sensitive: []docmodel.SensitiveItem{{EntityType: "phone"}}},
			{Page: 2, Sensitive: []docmodel.SensitiveItem{{EntityType: "phone"}}},
		}},
	}
	o := New([]Detector{a, b})

	entities, mapping := o.DetectSensitiveDataAsync(context.Background(), docmodel.ExtractedData{}, nil)

	require.Len(t, entities, 2)
	require.Len(t, mapping.Pages, 2)
	assert.Equal(t, 1, mapping.Pages[0].Page)
	assert.Equal(t, 2, mapping.Pages[1].Page)
	require.Len(t, mapping.Pages[1].Sensitive, 2)
}

func TestDetectSensitiveDataAsync_PanickingDetectorIsExcludedNotFatal(t *testing.T) {
	good := &stubDetector{
		name:     "good",
		entities: []docmodel.Entity{{EntityType: "email"}},
		mapping:  docmodel.RedactionMapping{Pages: []docmodel.PageRedaction{{Page: 1}}},
	}
	bad := &stubDetector{name: "bad", panics: true}
	o := New([]Detector{good, bad})

	entities, mapping := o.DetectSensitiveDataAsync(context.Background(), docmodel.ExtractedData{}, nil)

	require.Len(t, entities, 1)
	require.Len(t, mapping.Pages, 1)
}

func TestDetectSensitiveDataAsync_SlowDetectorDoesNotBlockOthers(t *testing.T) {
	fast := &stubDetector{
		name:     "fast",
		entities: []docmodel.Entity{{EntityType: "email"}},
		mapping:  docmodel.RedactionMapping{Pages: []docmodel.PageRedaction{{Page: 1}}},
	}
	slow := &stubDetector{name: "slow", delay: 200 * time.Millisecond}
	o := New([]Detector{fast, slow})

	start := time.Now()
	entities, mapping := o.DetectSensitiveDataAsync(context.Background(), docmodel.ExtractedData{}, nil)
	elapsed := time.Since(start)

	require.Len(t, entities, 1)
	require.Len(t, mapping.Pages, 1)
	assert.Less(t, elapsed, perDetectorTimeout)
}

func TestStatus_ReportsDetectorCount(t *testing.T) {
	o := New([]Detector{&stubDetector{name: "a"}, &stubDetector{name: "b"}})
	status := o.Status()
	assert.Equal(t, 2, status.DetectorCount)
	require.Len(t, status.Detectors, 2)
	assert.Empty(t, status.RuntimeError)
}

func TestMergeMappings_ConcatenatesSensitiveListsPerPage(t *testing.T) {
	merged := mergeMappings([]docmodel.RedactionMapping{
		{Pages: []docmodel.PageRedaction{{Page: 3, Sensitive: []docmodel.SensitiveItem{{EntityType: "x"}}}}},
		{Pages: []docmodel.PageRedaction{{Page: 1, Sensitive: []docmodel.SensitiveItem{{EntityType: "y"}}}}},
	})
	require.Len(t, merged.Pages, 2)
	assert.Equal(t, 1, merged.Pages[0].Page)
	assert.Equal(t, 3, merged.Pages[1].Page)
}

func TestProcessOutcomes_SeparatesSuccessFromFailure(t *testing.T) {
	outcomes := []outcome{
		{engine: "a", success: true, entities: []docmodel.Entity{{EntityType: "e1"}}},
		{engine: "b", success: false},
	}
	entities, mappings, successCount, failureCount := processOutcomes(outcomes)
	assert.Len(t, entities, 1)
	assert.Len(t, mappings, 1)
	assert.Equal(t, 1, successCount)
	assert.Equal(t, 1, failureCount)
}
