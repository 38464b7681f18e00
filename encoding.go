// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"math"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

// winAnsiEncoding, macRomanEncoding and pdfDocEncoding map the single-byte
// character codes used by simple PDF fonts to Unicode runes, per Appendix D
// of the PDF specification (ISO 32000-1). Bytes with no defined mapping
// decode to unicode.ReplacementChar.
var winAnsiEncoding [256]rune
var macRomanEncoding [256]rune
var pdfDocEncoding [256]rune

// nameToRune maps a handful of the Adobe Glyph List names most commonly
// seen in a font's /Differences array to their Unicode rune. Names not
// present here are treated as unmapped.
var nameToRune map[string]rune

func init() {
	for i := range winAnsiEncoding {
		winAnsiEncoding[i] = unicode.ReplacementChar
		macRomanEncoding[i] = unicode.ReplacementChar
		pdfDocEncoding[i] = unicode.ReplacementChar
	}
	// ASCII printable range is identical across all three encodings and
	// Unicode.
	for i := 0x20; i <= 0x7E; i++ {
		winAnsiEncoding[i] = rune(i)
		macRomanEncoding[i] = rune(i)
		pdfDocEncoding[i] = rune(i)
	}
	winAnsiEncoding[0x7F] = unicode.ReplacementChar

	winAnsiHigh := map[int]rune{
		0x80: 0x20AC, 0x82: 0x201A, 0x83: 0x0192, 0x84: 0x201E, 0x85: 0x2026,
		0x86: 0x2020, 0x87: 0x2021, 0x88: 0x02C6, 0x89: 0x2030, 0x8A: 0x0160,
		0x8B: 0x2039, 0x8C: 0x0152, 0x8E: 0x017D, 0x91: 0x2018, 0x92: 0x2019,
		0x93: 0x201C, 0x94: 0x201D, 0x95: 0x2022, 0x96: 0x2013, 0x97: 0x2014,
		0x98: 0x02DC, 0x99: 0x2122, 0x9A: 0x0161, 0x9B: 0x203A, 0x9C: 0x0153,
		0x9E: 0x017E, 0x9F: 0x0178, 0xA0: 0x00A0, 0xAD: 0x00AD,
	}
	for i, r := range winAnsiHigh {
		winAnsiEncoding[i] = r
	}
	for i := 0xA1; i <= 0xFF; i++ {
		if winAnsiEncoding[i] == unicode.ReplacementChar {
			winAnsiEncoding[i] = rune(i) // Latin-1 supplement is identity for the rest
		}
	}

	macRomanHigh := map[int]rune{
		0x80: 0x00C4, 0x81: 0x00C5, 0x82: 0x00C7, 0x83: 0x00C9, 0x84: 0x00D1,
		0x85: 0x00D6, 0x86: 0x00DC, 0x87: 0x00E1, 0x88: 0x00E0, 0x89: 0x00E2,
		0x8A: 0x00E4, 0x8B: 0x00E3, 0x8C: 0x00E5, 0x8D: 0x00E7, 0x8E: 0x00E9,
		0x8F: 0x00E8, 0x90: 0x00EA, 0x91: 0x00EB, 0x92: 0x00ED, 0x93: 0x00EC,
		0x94: 0x00EE, 0x95: 0x00EF, 0x96: 0x00F1, 0x97: 0x00F3, 0x98: 0x00F2,
		0x99: 0x00F4, 0x9A: 0x00F6, 0x9B: 0x00F5, 0x9C: 0x00FA, 0x9D: 0x00F9,
		0x9E: 0x00FB, 0x9F: 0x00FC, 0xA0: 0x2020, 0xA5: 0x2022,
	}
	for i, r := range macRomanHigh {
		macRomanEncoding[i] = r
	}

	pdfDocHigh := map[int]rune{
		0x18: 0x02D8, 0x19: 0x02C7, 0x1A: 0x02C6, 0x1B: 0x02D9, 0x1C: 0x02DD,
		0x1D: 0x02DB, 0x1E: 0x02DA, 0x1F: 0x02DC,
		0x80: 0x2022, 0x81: 0x2020, 0x82: 0x2021, 0x83: 0x2026, 0x84: 0x2014,
		0x85: 0x2013, 0x86: 0x0192, 0x87: 0x2044, 0x88: 0x2039, 0x89: 0x203A,
		0x8A: 0x2212, 0x8B: 0x2030, 0x8C: 0x201E, 0x8D: 0x201C, 0x8E: 0x201D,
		0x8F: 0x2018, 0x90: 0x2019, 0x91: 0x201A, 0x92: 0x2122, 0x93: 0xFB01,
		0x94: 0xFB02, 0x95: 0x0141, 0x96: 0x0152, 0x97: 0x0160, 0x98: 0x0178,
		0x99: 0x017D, 0x9A: 0x0131, 0x9B: 0x0142, 0x9C: 0x0153, 0x9D: 0x0161,
		0x9E: 0x017E, 0xA0: 0x20AC,
	}
	for i, r := range pdfDocHigh {
		pdfDocEncoding[i] = r
	}
	for i := 0xA1; i <= 0xFF; i++ {
		if pdfDocEncoding[i] == unicode.ReplacementChar {
			pdfDocEncoding[i] = rune(i)
		}
	}

	nameToRune = map[string]rune{
		"space": ' ', "exclam": '!', "quotedbl": '"', "numbersign": '#',
		"dollar": '$', "percent": '%', "ampersand": '&', "quotesingle": '\'',
		"parenleft": '(', "parenright": ')', "asterisk": '*', "plus": '+',
		"comma": ',', "hyphen": '-', "period": '.', "slash": '/',
		"zero": '0', "one": '1', "two": '2', "three": '3', "four": '4',
		"five": '5', "six": '6', "seven": '7', "eight": '8', "nine": '9',
		"colon": ':', "semicolon": ';', "less": '<', "equal": '=',
		"greater": '>', "question": '?', "at": '@',
		"bracketleft": '[', "backslash": '\\', "bracketright": ']',
		"underscore": '_', "grave": '`', "braceleft": '{', "bar": '|',
		"braceright": '}', "asciitilde": '~',
		"bullet": 0x2022, "endash": 0x2013, "emdash": 0x2014,
		"quoteleft": 0x2018, "quoteright": 0x2019,
		"quotedblleft": 0x201C, "quotedblright": 0x201D,
		"ellipsis": 0x2026, "trademark": 0x2122, "fi": 0xFB01, "fl": 0xFB02,
	}
	for c := 'A'; c <= 'Z'; c++ {
		nameToRune[string(c)] = c
	}
	for c := 'a'; c <= 'z'; c++ {
		nameToRune[string(c)] = c
	}
}

// isPDFDocEncoded reports whether s looks like text in one of the
// single-byte PDF text-string encodings, as opposed to UTF-16BE with a
// byte-order mark.
func isPDFDocEncoded(s string) bool {
	if isUTF16(s) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if pdfDocEncoding[s[i]] == unicode.ReplacementChar {
			return false
		}
	}
	return true
}

// pdfDocDecode decodes s, a PDFDocEncoded byte string, to UTF-8.
func pdfDocDecode(s string) string {
	r := make([]rune, len(s))
	for i := 0; i < len(s); i++ {
		r[i] = pdfDocEncoding[s[i]]
	}
	return string(r)
}

// isUTF16 reports whether s begins with a UTF-16BE byte-order mark and
// has an even length, as required of a PDF "text string" encoded as
// UTF-16BE per ISO 32000-1 §7.9.2.2.
func isUTF16(s string) bool {
	if len(s) < 2 || len(s)%2 != 0 {
		return false
	}
	return s[0] == 0xFE && s[1] == 0xFF
}

// utf16Decode decodes s as big-endian UTF-16 (without a leading BOM) to
// a UTF-8 string.
func utf16Decode(s string) string {
	if len(s)%2 != 0 {
		return ""
	}
	units := make([]uint16, len(s)/2)
	for i := range units {
		units[i] = uint16(s[2*i])<<8 | uint16(s[2*i+1])
	}
	return string(utf16.Decode(units))
}

// DecodeUTF8OrPreserve decodes s as UTF-8 when it is valid UTF-8;
// otherwise it returns one rune per raw byte so the original bytes
// survive round-trip instead of being replaced or dropped.
func DecodeUTF8OrPreserve(s string) []rune {
	if utf8.ValidString(s) {
		return []rune(s)
	}
	out := make([]rune, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = rune(s[i])
	}
	return out
}

// IsSameSentence reports whether current continues the same line of text
// as last: same font, essentially the same size and baseline, with last
// carrying some text already.
func IsSameSentence(last, current Text) bool {
	if last.S == "" {
		return false
	}
	if last.Font != current.Font {
		return false
	}
	if math.Abs(last.FontSize-current.FontSize) > 0.5 {
		return false
	}
	if math.Abs(last.Y-current.Y) > 5 {
		return false
	}
	return true
}
