// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package docmodel holds the data shapes shared by the extraction,
// detection and redaction stages: Word, Page, ExtractedData, Entity,
// bounding boxes, redaction mappings and the other wire/record types
// the rest of the engine passes between components.
package docmodel

import "strings"

// BoundingBox is an axis-aligned rectangle in PDF points, x0<x1, y0<y1.
type BoundingBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Union returns the smallest BoundingBox containing both b and other.
func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	return BoundingBox{
		X0: min(b.X0, other.X0),
		Y0: min(b.Y0, other.Y0),
		X1: max(b.X1, other.X1),
		Y1: max(b.Y1, other.Y1),
	}
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// CompositeBBox is the union rectangle of the words backing one entity.
type CompositeBBox = BoundingBox

// Word is one piece of extracted page text. Immutable after extraction.
type Word struct {
	Text string      `json:"text"`
	BBox BoundingBox `json:"bbox"`
	// Block and Line identify the PDF content-stream grouping the word
	// came from; WordIndex is its position within that line.
	Block     int `json:"block,omitempty"`
	Line      int `json:"line,omitempty"`
	WordIndex int `json:"word_index,omitempty"`
}

// Trimmed reports whether the word has non-whitespace text.
func (w Word) Trimmed() bool {
	return strings.TrimSpace(w.Text) != ""
}

// Page is one page's ordered words, as produced by extraction.
type Page struct {
	PageNumber int    `json:"page"`
	Words      []Word `json:"words"`
	Error      string `json:"error,omitempty"`
}

// FullTextAndOffsets reconstructs the page's full text by joining word
// text with single spaces, and returns, for each word, the half-open
// character range [start,end) it occupies in that reconstructed text.
func (p Page) FullTextAndOffsets() (string, []WordOffset) {
	var b strings.Builder
	offsets := make([]WordOffset, 0, len(p.Words))
	for i, w := range p.Words {
		if i > 0 {
			b.WriteByte(' ')
		}
		start := b.Len()
		b.WriteString(w.Text)
		offsets = append(offsets, WordOffset{Word: w, Start: start, End: b.Len()})
	}
	return b.String(), offsets
}

// WordOffset pairs a Word with its character range within a page's
// reconstructed full text.
type WordOffset struct {
	Word  Word
	Start int
	End   int
}

// ExtractedData is the result of extracting one document.
type ExtractedData struct {
	Pages              []Page            `json:"pages"`
	EmptyPages         []int             `json:"empty_pages"`
	ContentPages       int               `json:"content_pages"`
	TotalDocumentPages int               `json:"total_document_pages"`
	Metadata           map[string]string `json:"metadata,omitempty"`
	Error              string            `json:"error,omitempty"`
	Timeout            bool              `json:"timeout,omitempty"`
}

// Entity is a detected span of sensitive information.
type Entity struct {
	EntityType   string  `json:"entity_type"`
	Start        int     `json:"start"`
	End          int     `json:"end"`
	Score        float64 `json:"score"`
	OriginalText string  `json:"original_text"`
	Page         int     `json:"page,omitempty"`
}

// SensitiveItem is one entity occurrence placed on a page for redaction.
type SensitiveItem struct {
	EntityType   string      `json:"entity_type"`
	Score        float64     `json:"score"`
	BBox         BoundingBox `json:"bbox"`
	OriginalText string      `json:"original_text,omitempty"`
}

// PageRedaction lists the sensitive items found on one page.
type PageRedaction struct {
	Page      int             `json:"page"`
	Sensitive []SensitiveItem `json:"sensitive"`
}

// RedactionMapping is the full per-page redaction plan for a document,
// ordered ascending by page number.
type RedactionMapping struct {
	Pages []PageRedaction `json:"pages"`
}

// ImageBBox is an image XObject's placement bbox on a page, together
// with its resource reference id, as returned by image-region
// discovery (used both for optional image redaction and for tests).
type ImageBBox struct {
	RefID string      `json:"ref_id"`
	BBox  BoundingBox `json:"bbox"`
}

// CacheEntry is one entry in the response cache.
type CacheEntry struct {
	Content   []byte            `json:"-"`
	StatusCode int              `json:"status_code"`
	Headers   map[string]string `json:"headers,omitempty"`
	MediaType string            `json:"media_type"`
	ExpiresAt int64             `json:"expires_at"`
	ETag      string            `json:"etag,omitempty"`
}

// DetectorStatus reports a detector singleton's lifecycle state.
type DetectorStatus struct {
	Initialized        bool    `json:"initialized"`
	InitializationTime float64 `json:"initialization_time_seconds"`
	LastUsed           int64   `json:"last_used_unix"`
	TotalCalls         int64   `json:"total_calls"`
	ModelAvailable     bool    `json:"model_available"`
	EngineName         string  `json:"engine_name"`
	ModelDirExists     bool    `json:"model_dir_exists"`
}

// ProcessingRecord is one append-only JSONL line in the retention log.
type ProcessingRecord struct {
	Timestamp      string   `json:"timestamp"`
	OperationType  string   `json:"operation_type"`
	DocumentType   string   `json:"document_type"`
	EntityTypes    []string `json:"entity_types"`
	ProcessingTime float64  `json:"processing_time"`
	FileCount      int      `json:"file_count"`
	EntityCount    int      `json:"entity_count"`
	Success        bool     `json:"success"`
	LegalBasis     string   `json:"legal_basis,omitempty"`
	OperationID    string   `json:"operation_id"`
}
