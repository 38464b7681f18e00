// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package minimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hideme/pdf-redact-engine/docmodel"
)

func TestMinimize_DropsEmptyWordsAndUnwhitelistedMetadata(t *testing.T) {
	data := docmodel.ExtractedData{
		Pages: []docmodel.Page{
			{PageNumber: 1, Words: []docmodel.Word{
				{Text: "hello", BBox: docmodel.BoundingBox{X1: 5, Y1: 5}},
				{Text: "   "},
			}},
		},
		Metadata: map[string]string{"document_id": "abc", "author": "Jane Doe"},
	}

	result := Minimize(data, nil, false)
	require.Len(t, result.Pages, 1)
	assert.Len(t, result.Pages[0].Words, 1)
	assert.Equal(t, "hello", result.Pages[0].Words[0].Text)
	assert.Equal(t, "abc", result.Metadata["document_id"])
	_, hasAuthor := result.Metadata["author"]
	assert.False(t, hasAuthor)
}

func TestMinimize_RequiredFieldsOnlyStripsToTextAndBBox(t *testing.T) {
	data := docmodel.ExtractedData{
		Pages: []docmodel.Page{
			{PageNumber: 1, Words: []docmodel.Word{
				{Text: "x", BBox: docmodel.BoundingBox{X1: 1, Y1: 1}, Block: 2, Line: 3, WordIndex: 4},
			}},
		},
	}
	result := Minimize(data, nil, true)
	w := result.Pages[0].Words[0]
	assert.Equal(t, "x", w.Text)
	assert.Equal(t, 0, w.Block)
	assert.Equal(t, 0, w.Line)
}

func TestMinimize_PageWithOnlyEmptyWordsIsDropped(t *testing.T) {
	data := docmodel.ExtractedData{
		Pages: []docmodel.Page{
			{PageNumber: 1, Words: []docmodel.Word{{Text: "  "}}},
		},
	}
	result := Minimize(data, nil, false)
	assert.Empty(t, result.Pages)
}

func TestMinimize_AttachesMetaPolicy(t *testing.T) {
	result := Minimize(docmodel.ExtractedData{}, []string{"filename"}, true)
	assert.True(t, result.Meta.RequiredFieldsOnly)
	assert.Equal(t, []string{"filename"}, result.Meta.FieldsRetained)
	assert.False(t, result.Meta.AppliedAt.IsZero())
}

func TestSanitizeDocumentMetadata_EmptyInputReturnsEmptyMap(t *testing.T) {
	out := SanitizeDocumentMetadata(nil, false, nil)
	assert.Empty(t, out)
}

func TestSanitizeDocumentMetadata_RemovesAndReplacesFields(t *testing.T) {
	out := SanitizeDocumentMetadata(map[string]string{
		"author": "Jane Doe",
		"title":  "Quarterly Report",
	}, false, nil)
	_, hasAuthor := out["author"]
	assert.False(t, hasAuthor)
	assert.Equal(t, "[Document Title]", out["title"])
	assert.Equal(t, "true", out["_sanitized"])
}

func TestSanitizeDocumentMetadata_PreserveFieldsSkipsRemoval(t *testing.T) {
	out := SanitizeDocumentMetadata(map[string]string{"author": "Jane Doe"}, false, []string{"author"})
	assert.Equal(t, "Jane Doe", out["author"])
}

func TestSanitizeDocumentMetadata_SanitizeAllAppliesRegexPatterns(t *testing.T) {
	out := SanitizeDocumentMetadata(map[string]string{
		"custom_note": "contact jane.doe@example.com or 192.168.1.1",
	}, true, []string{"custom_note"})
	assert.Equal(t, "contact jane.doe@example.com or 192.168.1.1", out["custom_note"])

	out2 := SanitizeDocumentMetadata(map[string]string{
		"notes": "contact jane.doe@example.com or 192.168.1.1",
	}, true, nil)
	assert.Contains(t, out2["notes"], "[EMAIL]")
	assert.Contains(t, out2["notes"], "[IP_ADDRESS]")
}

func TestApplySensitivePatterns_MacAddress(t *testing.T) {
	assert.Equal(t, "device [MAC_ADDRESS] seen", applySensitivePatterns("device 00:1A:2B:3C:4D:5E seen"))
}
