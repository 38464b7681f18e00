// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

// The types in this file are the low-level PDF object model shared by the
// tokenizer (buffer.go), the PostScript-like content interpreter (ps.go) and
// the higher-level Reader/Value machinery in read.go.

// A name is a PDF name object, such as /Type, written without the
// leading slash.
type name string

// A dict is a PDF dictionary object, a mapping from names to arbitrary
// PDF objects.
type dict map[name]interface{}

// An array is a PDF array object: an ordered sequence of arbitrary
// PDF objects.
type array []interface{}

// An object is any decoded PDF object: nil, bool, int64, float64, string,
// name, dict, array, stream, objptr or objdef.
type object interface{}

// An objptr is an indirect reference to an object, identified by an
// object number and generation number, as in "12 0 R".
type objptr struct {
	id  uint32
	gen uint16
}

// An objdef pairs an objptr with the decoded object found at
// "<id> <gen> obj ... endobj".
type objdef struct {
	ptr objptr
	obj object
}

// A stream is a PDF stream object: a dictionary header describing
// encoded bytes that begin at offset in the underlying file.
type stream struct {
	hdr    dict
	ptr    objptr
	offset int64
}

// A keyword is a bare PDF/PostScript keyword token, such as "obj",
// "endobj", "stream", "R", "true", "null" or a content-stream operator
// such as "Tj".
type keyword string

// newDict returns a Value wrapping a freshly allocated, detached
// dictionary. It is used by the content-stream interpreter to seed
// resource dictionaries that exist only for the duration of Interpret.
func newDict() Value {
	return Value{nil, objptr{}, dict{}}
}
