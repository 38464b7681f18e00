// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hideme/pdf-redact-engine/docmodel"
)

func sampleExtractedData() docmodel.ExtractedData {
	return docmodel.ExtractedData{
		Pages: []docmodel.Page{
			{
				PageNumber: 1,
				Words: []docmodel.Word{
					{Text: "Contact", BBox: docmodel.BoundingBox{X0: 0, Y0: 0, X1: 10, Y1: 5}},
					{Text: "Jane", BBox: docmodel.BoundingBox{X0: 12, Y0: 0, X1: 20, Y1: 5}},
					{Text: "Doe", BBox: docmodel.BoundingBox{X0: 22, Y0: 0, X1: 30, Y1: 5}},
				},
			},
		},
	}
}

func TestSearchText_FindsCaseInsensitiveMatchWithUnionBBox(t *testing.T) {
	data := sampleExtractedData()
	matches := searchText(data, "jane doe")
	require.Len(t, matches, 1)
	assert.Equal(t, 1, matches[0].Page)
	assert.Equal(t, "Jane Doe", matches[0].Text)
	assert.Equal(t, docmodel.BoundingBox{X0: 12, Y0: 0, X1: 30, Y1: 5}, matches[0].BBox)
}

func TestSearchText_EmptyQueryReturnsNoMatches(t *testing.T) {
	assert.Nil(t, searchText(sampleExtractedData(), "   "))
}

func TestSearchText_NoOccurrenceReturnsNoMatches(t *testing.T) {
	assert.Empty(t, searchText(sampleExtractedData(), "nonexistent"))
}

func TestFindWords_MatchesExactWordsCaseInsensitively(t *testing.T) {
	data := sampleExtractedData()
	matches := findWords(data, []string{"jane", "MISSING"})
	require.Len(t, matches, 1)
	assert.Equal(t, "Jane", matches[0].Text)
}

func TestFindWords_EmptyWordListReturnsNoMatches(t *testing.T) {
	assert.Nil(t, findWords(sampleExtractedData(), nil))
}
