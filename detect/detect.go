// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package detect holds the normalization logic shared by every concrete
// entity detector: turning a raw engine hit into a docmodel.Entity,
// mapping text offsets to word bounding boxes, and score filtering.
package detect

import (
	"fmt"
	"strings"

	"github.com/hideme/pdf-redact-engine/docmodel"
)

// RawEntity is the engine-native shape a detector's underlying model
// returns: a label, a half-open [Start,End) offset into the text that
// was scored, a confidence score and the covered text.
type RawEntity struct {
	Label string
	Start int
	End   int
	Score float64
	Text  string
}

// Standardize converts a RawEntity scored against fullText into the
// internal docmodel.Entity shape. It fails closed: if the offsets don't
// land inside fullText or the recovered text is empty, ok is false and
// the caller should skip the hit rather than emit a malformed entity.
func Standardize(raw RawEntity, fullText string, page int) (docmodel.Entity, bool) {
	if raw.Start < 0 || raw.End > len(fullText) || raw.Start >= raw.End {
		return docmodel.Entity{}, false
	}
	text := fullText[raw.Start:raw.End]
	if strings.TrimSpace(text) == "" {
		return docmodel.Entity{}, false
	}
	return docmodel.Entity{
		EntityType:   raw.Label,
		Start:        raw.Start,
		End:          raw.End,
		Score:        raw.Score,
		OriginalText: text,
		Page:         page,
	}, true
}

// MapToBBox recomputes a composite bounding box for an entity by
// intersecting its [Start,End) range against the page's word offsets
// and unioning every overlapping word's bbox.
func MapToBBox(entity docmodel.Entity, offsets []docmodel.WordOffset) (docmodel.BoundingBox, bool) {
	var box docmodel.BoundingBox
	found := false
	for _, wo := range offsets {
		if wo.End <= entity.Start || wo.Start >= entity.End {
			continue
		}
		if !found {
			box = wo.Word.BBox
			found = true
			continue
		}
		box = box.Union(wo.Word.BBox)
	}
	return box, found
}

// FilterByScore removes entities scoring below minScore. It accepts
// either a flat entity list or a nested redaction mapping, mirroring
// the two shapes the detector pipeline passes around; any other input
// shape is reported as an error rather than silently ignored.
func FilterByScore(data interface{}, minScore float64) (interface{}, error) {
	switch v := data.(type) {
	case []docmodel.Entity:
		out := make([]docmodel.Entity, 0, len(v))
		for _, e := range v {
			if e.Score >= minScore {
				out = append(out, e)
			}
		}
		return out, nil
	case docmodel.RedactionMapping:
		out := docmodel.RedactionMapping{Pages: make([]docmodel.PageRedaction, 0, len(v.Pages))}
		for _, pr := range v.Pages {
			filtered := make([]docmodel.SensitiveItem, 0, len(pr.Sensitive))
			for _, s := range pr.Sensitive {
				if s.Score >= minScore {
					filtered = append(filtered, s)
				}
			}
			out.Pages = append(out.Pages, docmodel.PageRedaction{Page: pr.Page, Sensitive: filtered})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("filter_by_score: unsupported input shape %T", data)
	}
}

// ProcessSingleEntity standardizes, bbox-maps, and packages one raw hit
// into its processed entity plus its redaction-sensitive entry. Any
// failure along the way yields (nil, nil) rather than propagating an
// error, matching the detector pipeline's best-effort-per-entity
// semantics.
func ProcessSingleEntity(raw RawEntity, fullText string, page int, offsets []docmodel.WordOffset) ([]docmodel.Entity, []docmodel.SensitiveItem) {
	entity, ok := Standardize(raw, fullText, page)
	if !ok {
		return nil, nil
	}
	bbox, ok := MapToBBox(entity, offsets)
	if !ok {
		return nil, nil
	}
	sensitive := docmodel.SensitiveItem{
		EntityType:   entity.EntityType,
		Score:        entity.Score,
		BBox:         bbox,
		OriginalText: entity.OriginalText,
	}
	return []docmodel.Entity{entity}, []docmodel.SensitiveItem{sensitive}
}
