// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hideme/pdf-redact-engine/docmodel"
)

func TestStandardize_RecoversOriginalText(t *testing.T) {
	e, ok := Standardize(RawEntity{Label: "person", Start: 5, End: 9, Score: 0.9}, "Hello John, welcome", 1)
	require.True(t, ok)
	assert.Equal(t, "John", e.OriginalText)
	assert.Equal(t, "person", e.EntityType)
}

func TestStandardize_RejectsOutOfRangeOffsets(t *testing.T) {
	_, ok := Standardize(RawEntity{Start: 50, End: 60}, "short text", 1)
	assert.False(t, ok)
}

func TestStandardize_RejectsWhitespaceOnlyText(t *testing.T) {
	_, ok := Standardize(RawEntity{Start: 0, End: 1}, " text", 1)
	assert.False(t, ok)
}

func TestMapToBBox_UnionsOverlappingWords(t *testing.T) {
	offsets := []docmodel.WordOffset{
		{Word: docmodel.Word{BBox: docmodel.BoundingBox{X0: 0, Y0: 0, X1: 5, Y1: 10}}, Start: 0, End: 5},
		{Word: docmodel.Word{BBox: docmodel.BoundingBox{X0: 5, Y0: 0, X1: 10, Y1: 10}}, Start: 6, End: 11},
	}
	entity := docmodel.Entity{Start: 2, End: 8}
	box, ok := MapToBBox(entity, offsets)
	require.True(t, ok)
	assert.Equal(t, 0.0, box.X0)
	assert.Equal(t, 10.0, box.X1)
}

func TestMapToBBox_NoOverlapReturnsFalse(t *testing.T) {
	offsets := []docmodel.WordOffset{{Word: docmodel.Word{}, Start: 100, End: 105}}
	_, ok := MapToBBox(docmodel.Entity{Start: 0, End: 5}, offsets)
	assert.False(t, ok)
}

func TestFilterByScore_FlatList(t *testing.T) {
	entities := []docmodel.Entity{{Score: 0.9}, {Score: 0.2}}
	out, err := FilterByScore(entities, 0.5)
	require.NoError(t, err)
	assert.Len(t, out.([]docmodel.Entity), 1)
}

func TestFilterByScore_NestedMapping(t *testing.T) {
	mapping := docmodel.RedactionMapping{Pages: []docmodel.PageRedaction{
		{Page: 1, Sensitive: []docmodel.SensitiveItem{{Score: 0.9}, {Score: 0.1}}},
	}}
	out, err := FilterByScore(mapping, 0.5)
	require.NoError(t, err)
	result := out.(docmodel.RedactionMapping)
	assert.Len(t, result.Pages[0].Sensitive, 1)
}

func TestFilterByScore_InvalidShapeIsError(t *testing.T) {
	_, err := FilterByScore("not a valid shape", 0.5)
	assert.Error(t, err)
}

func TestProcessSingleEntity_FailureYieldsEmptySlices(t *testing.T) {
	entities, sensitive := ProcessSingleEntity(RawEntity{Start: 100, End: 200}, "short", 1, nil)
	assert.Nil(t, entities)
	assert.Nil(t, sensitive)
}

func TestProcessSingleEntity_SuccessYieldsBoth(t *testing.T) {
	offsets := []docmodel.WordOffset{
		{Word: docmodel.Word{Text: "John", BBox: docmodel.BoundingBox{X1: 5, Y1: 10}}, Start: 6, End: 10},
	}
	entities, sensitive := ProcessSingleEntity(RawEntity{Label: "person", Start: 6, End: 10, Score: 0.8}, "Hello John", 1, offsets)
	require.Len(t, entities, 1)
	require.Len(t, sensitive, 1)
	assert.Equal(t, "John", entities[0].OriginalText)
}
