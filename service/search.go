// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package service

import (
	"strings"

	"github.com/hideme/pdf-redact-engine/docmodel"
)

// SearchMatch is one occurrence of a search query within an extracted
// document, with the composite bbox of the words it spans.
type SearchMatch struct {
	Page int                 `json:"page"`
	Text string              `json:"text"`
	BBox docmodel.BoundingBox `json:"bbox"`
}

// searchText finds every case-insensitive occurrence of query within
// data's reconstructed per-page text and maps each back to the union
// bbox of the words it overlaps, the same word-offset technique
// detectgeneric uses to place a detected entity's span on the page.
func searchText(data docmodel.ExtractedData, query string) []SearchMatch {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	needle := strings.ToLower(query)
	var matches []SearchMatch
	for _, page := range data.Pages {
		fullText, offsets := page.FullTextAndOffsets()
		lower := strings.ToLower(fullText)
		for start := 0; ; {
			idx := strings.Index(lower[start:], needle)
			if idx < 0 {
				break
			}
			matchStart := start + idx
			matchEnd := matchStart + len(needle)
			if bbox, ok := unionBBoxForRange(offsets, matchStart, matchEnd); ok {
				matches = append(matches, SearchMatch{
					Page: page.PageNumber,
					Text: fullText[matchStart:matchEnd],
					BBox: bbox,
				})
			}
			start = matchStart + 1
		}
	}
	return matches
}

// findWords returns every word on every page whose trimmed text
// case-insensitively equals one of the requested words.
func findWords(data docmodel.ExtractedData, words []string) []SearchMatch {
	wanted := make(map[string]bool, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w != "" {
			wanted[strings.ToLower(w)] = true
		}
	}
	if len(wanted) == 0 {
		return nil
	}
	var matches []SearchMatch
	for _, page := range data.Pages {
		for _, w := range page.Words {
			if !w.Trimmed() {
				continue
			}
			if wanted[strings.ToLower(strings.TrimSpace(w.Text))] {
				matches = append(matches, SearchMatch{Page: page.PageNumber, Text: w.Text, BBox: w.BBox})
			}
		}
	}
	return matches
}

func unionBBoxForRange(offsets []docmodel.WordOffset, start, end int) (docmodel.BoundingBox, bool) {
	var box docmodel.BoundingBox
	found := false
	for _, off := range offsets {
		if off.End <= start || off.Start >= end {
			continue
		}
		if !found {
			box = off.Word.BBox
			found = true
			continue
		}
		box = box.Union(off.Word.BBox)
	}
	return box, found
}
