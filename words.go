// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"sort"
	"strings"

	"github.com/hideme/pdf-redact-engine/docmodel"
)

// lineGapFactor and wordGapFactor are expressed relative to font size,
// the same way GetTextByRow/GetTextByColumn bucket characters by raw X/Y
// proximity rather than a fixed point tolerance.
const (
	lineGapFactor = 0.4
	wordGapFactor = 0.3
)

// wordsFromContent groups the page's per-character Text runs (as
// produced by Page.Content()) into words with bounding boxes, block
// index and line index, and a per-line word index — the shape
// docmodel.Word requires. Runs are first bucketed into lines by Y
// proximity (characters on the same baseline), then split into words at
// horizontal gaps wider than a fraction of the current font size or at
// whitespace runs.
func wordsFromContent(chars []Text) []docmodel.Word {
	if len(chars) == 0 {
		return nil
	}

	lines := groupIntoLines(chars)

	var words []docmodel.Word
	blockIdx := 0
	prevLineY := 0.0
	for lineIdx, line := range lines {
		if lineIdx > 0 && blockBreak(prevLineY, line[0].Y, line[0].FontSize) {
			blockIdx++
		}
		prevLineY = line[0].Y

		wordIdx := 0
		var cur []Text
		flush := func() {
			if w, ok := wordFromRun(cur, blockIdx, lineIdx, wordIdx); ok {
				words = append(words, w)
				wordIdx++
			}
			cur = nil
		}
		for i, ch := range line {
			if strings.TrimSpace(ch.S) == "" {
				flush()
				continue
			}
			if len(cur) > 0 {
				prev := cur[len(cur)-1]
				gap := ch.X - (prev.X + prev.W)
				if gap > wordGapFactor*maxF(prev.FontSize, 1) {
					flush()
				}
			}
			cur = append(cur, ch)
			if i == len(line)-1 {
				flush()
			}
		}
	}
	return words
}

// groupIntoLines buckets characters sharing (approximately) the same
// baseline Y into ordered lines, themselves ordered top-to-bottom then
// left-to-right, matching PDF's bottom-up Y axis (higher Y = higher on
// the page).
func groupIntoLines(chars []Text) [][]Text {
	sorted := make([]Text, len(chars))
	copy(sorted, chars)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines [][]Text
	var cur []Text
	var curY float64
	for _, ch := range sorted {
		if len(cur) == 0 {
			cur = append(cur, ch)
			curY = ch.Y
			continue
		}
		tol := lineGapFactor * maxF(ch.FontSize, 1)
		if absF(ch.Y-curY) <= tol {
			cur = append(cur, ch)
			continue
		}
		lines = append(lines, cur)
		cur = []Text{ch}
		curY = ch.Y
	}
	if len(cur) > 0 {
		lines = append(lines, cur)
	}
	return lines
}

// blockBreak decides whether a vertical gap between two lines is wide
// enough to start a new block (paragraph), using a coarser multiple of
// font size than the line-grouping tolerance.
func blockBreak(prevY, curY, fontSize float64) bool {
	return absF(prevY-curY) > 2.5*maxF(fontSize, 1)
}

func wordFromRun(run []Text, block, line, wordIndex int) (docmodel.Word, bool) {
	if len(run) == 0 {
		return docmodel.Word{}, false
	}
	var sb strings.Builder
	bbox := docmodel.BoundingBox{
		X0: run[0].X,
		Y0: run[0].Y,
		X1: run[0].X + run[0].W,
		Y1: run[0].Y + run[0].FontSize,
	}
	for _, ch := range run {
		sb.WriteString(ch.S)
		bbox = bbox.Union(docmodel.BoundingBox{
			X0: ch.X,
			Y0: ch.Y,
			X1: ch.X + ch.W,
			Y1: ch.Y + ch.FontSize,
		})
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return docmodel.Word{}, false
	}
	return docmodel.Word{
		Text:      text,
		BBox:      bbox,
		Block:     block,
		Line:      line,
		WordIndex: wordIndex,
	}, true
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
