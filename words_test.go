// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordsFromContent_GroupsCharsIntoWords(t *testing.T) {
	chars := []Text{
		{Font: "F1", FontSize: 10, X: 0, Y: 700, W: 6, S: "H"},
		{Font: "F1", FontSize: 10, X: 6, Y: 700, W: 6, S: "i"},
		{Font: "F1", FontSize: 10, X: 12, Y: 700, W: 4, S: " "},
		{Font: "F1", FontSize: 10, X: 20, Y: 700, W: 6, S: "t"},
		{Font: "F1", FontSize: 10, X: 26, Y: 700, W: 6, S: "h"},
		{Font: "F1", FontSize: 10, X: 32, Y: 700, W: 6, S: "e"},
		{Font: "F1", FontSize: 10, X: 38, Y: 700, W: 6, S: "r"},
		{Font: "F1", FontSize: 10, X: 44, Y: 700, W: 6, S: "e"},
	}

	words := wordsFromContent(chars)
	require.Len(t, words, 2)
	assert.Equal(t, "Hi", words[0].Text)
	assert.Equal(t, "there", words[1].Text)
	assert.Equal(t, 0, words[0].WordIndex)
	assert.Equal(t, 1, words[1].WordIndex)
}

func TestWordsFromContent_SkipsWhitespaceOnlyRuns(t *testing.T) {
	chars := []Text{
		{Font: "F1", FontSize: 10, X: 0, Y: 700, W: 4, S: " "},
		{Font: "F1", FontSize: 10, X: 4, Y: 700, W: 4, S: "\t"},
	}
	words := wordsFromContent(chars)
	assert.Empty(t, words)
}

func TestWordsFromContent_EmptyInput(t *testing.T) {
	assert.Nil(t, wordsFromContent(nil))
}

func TestWordsFromContent_NewLineStartsNewLineIndex(t *testing.T) {
	chars := []Text{
		{Font: "F1", FontSize: 10, X: 0, Y: 700, W: 6, S: "A"},
		{Font: "F1", FontSize: 10, X: 0, Y: 680, W: 6, S: "B"},
	}
	words := wordsFromContent(chars)
	require.Len(t, words, 2)
	assert.NotEqual(t, words[0].Line, words[1].Line)
}

func TestWordsFromContent_WideGapStartsNewBlock(t *testing.T) {
	chars := []Text{
		{Font: "F1", FontSize: 10, X: 0, Y: 700, W: 6, S: "A"},
		{Font: "F1", FontSize: 10, X: 0, Y: 600, W: 6, S: "B"}, // far below: new paragraph
	}
	words := wordsFromContent(chars)
	require.Len(t, words, 2)
	assert.NotEqual(t, words[0].Block, words[1].Block)
}

func TestWordsFromContent_BBoxUnionsCharacterBoxes(t *testing.T) {
	chars := []Text{
		{Font: "F1", FontSize: 10, X: 0, Y: 700, W: 6, S: "A"},
		{Font: "F1", FontSize: 10, X: 6, Y: 700, W: 6, S: "B"},
	}
	words := wordsFromContent(chars)
	require.Len(t, words, 1)
	assert.Equal(t, 0.0, words[0].BBox.X0)
	assert.Equal(t, 12.0, words[0].BBox.X1)
}
