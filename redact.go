// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/hideme/pdf-redact-engine/docmodel"
	"github.com/hideme/pdf-redact-engine/logger"
	"github.com/hideme/pdf-redact-engine/syncutil"
)

// RedactConfig controls the redactor's instance-lock timeout.
type RedactConfig struct {
	InstanceLockTimeout time.Duration `validate:"gt=0"`
}

// DefaultRedactConfig matches the 60s default instance-lock timeout
// extraction uses.
func DefaultRedactConfig() RedactConfig {
	return RedactConfig{InstanceLockTimeout: 60 * time.Second}
}

// Redactor rewrites a PDF as a standard incremental update (ISO 32000-1
// §7.5.6): the original bytes are left untouched, and every changed
// object — a page's content stream, the page dict, the /Info dict — is
// appended as a new object with a fresh xref subsection and a trailer
// carrying /Prev back to the original startxref.
type Redactor struct {
	cfg  RedactConfig
	lock *syncutil.TimeoutLock
}

// NewRedactor constructs a Redactor with its own instance lock.
func NewRedactor(cfg RedactConfig, stats *syncutil.LockStatistics) *Redactor {
	return &Redactor{
		cfg:  cfg,
		lock: syncutil.NewTimeoutLock("redactor_instance", syncutil.PriorityHigh, true, cfg.InstanceLockTimeout, nil, stats),
	}
}

// RedactOptions controls whether image regions are also blacked out,
// alongside the sensitive-text bboxes every page in the mapping names.
type RedactOptions struct {
	RedactImages bool
	ImageBoxes   map[int][]docmodel.ImageBBox // page -> image bboxes
}

// Redact applies mapping to src and either writes the result to
// outputPath (if non-empty) or returns it as bytes. Like Extractor, the
// bulk of the work runs under a per-instance lock so one document is
// never rewritten by two goroutines at once; on lock timeout it returns
// a structured error rather than panicking or racing the writer.
func (red *Redactor) Redact(ctx context.Context, src Source, mapping docmodel.RedactionMapping, opts RedactOptions, outputPath string) ([]byte, error) {
	owner := "redactor." + src.Path
	if !red.lock.Acquire(ctx, owner, 0) {
		return nil, fmt.Errorf("timed out waiting for document instance lock")
	}
	defer red.lock.Release(owner)

	raw, err := readAll(src)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}

	r, err := NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("parse source: %w", err)
	}

	startxref, err := FindStartXref(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("locate startxref: %w", err)
	}

	out := append([]byte{}, raw...)

	nextObj := maxObjectID(r) + 1
	var updates []objUpdate

	for _, pr := range mapping.Pages {
		page := r.Page(pr.Page)
		if page.V.IsNull() {
			continue
		}
		boxes := make([]docmodel.BoundingBox, 0, len(pr.Sensitive))
		for _, s := range pr.Sensitive {
			boxes = append(boxes, s.BBox)
		}
		if opts.RedactImages {
			for _, ib := range opts.ImageBoxes[pr.Page] {
				boxes = append(boxes, ib.BBox)
			}
		}
		if len(boxes) == 0 {
			continue
		}

		streamID := nextObj
		nextObj++
		streamBytes := redactionContentStream(boxes)
		updates = append(updates, objUpdate{
			id:   streamID,
			data: fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(streamBytes), streamBytes),
		})

		origDict, ok := page.V.data.(dict)
		if !ok {
			continue
		}
		newPageDict := make(dict, len(origDict)+1)
		for k, v := range origDict {
			newPageDict[k] = v
		}
		newPageDict[name("Contents")] = mergeContents(origDict[name("Contents")], objptr{id: uint32(streamID), gen: 0})

		updates = append(updates, objUpdate{
			id:   int(page.V.ptr.id),
			gen:  page.V.ptr.gen,
			data: serializeObject(newPageDict),
		})
	}

	if infoPtr, ok := r.trailer[name("Info")].(objptr); ok {
		updates = append(updates, objUpdate{
			id:   int(infoPtr.id),
			gen:  infoPtr.gen,
			data: serializeObject(sanitizedInfoDict()),
		})
	}

	if len(updates) == 0 {
		if outputPath != "" {
			if err := os.WriteFile(outputPath, out, 0o644); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	out = appendIncrementalUpdate(out, updates, r, startxref)

	if outputPath != "" {
		if err := os.WriteFile(outputPath, out, 0o644); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type objUpdate struct {
	id   int
	gen  uint16
	data string
}

// mergeContents folds a new content-stream reference in alongside
// whatever the page's original /Contents entry held (a single indirect
// reference or an array of them).
func mergeContents(orig interface{}, extra objptr) array {
	switch c := orig.(type) {
	case objptr:
		return array{c, extra}
	case array:
		merged := make(array, len(c), len(c)+1)
		copy(merged, c)
		return append(merged, extra)
	default:
		return array{extra}
	}
}

// redactionContentStream renders one opaque black rectangle per bbox,
// appended after the page's existing drawing operations so it paints on
// top of everything beneath it.
func redactionContentStream(boxes []docmodel.BoundingBox) string {
	var buf bytes.Buffer
	for _, b := range boxes {
		w := b.X1 - b.X0
		h := b.Y1 - b.Y0
		fmt.Fprintf(&buf, "q 0 0 0 rg %.2f %.2f %.2f %.2f re f Q\n", b.X0, b.Y0, w, h)
	}
	return buf.String()
}

func sanitizedInfoDict() dict {
	return dict{
		name("Title"):    "",
		name("Author"):   "",
		name("Subject"):  "",
		name("Keywords"): "",
		name("Creator"):  "",
		name("Producer"): "",
	}
}

// serializeObject renders a decoded PDF object back to its textual form.
// It handles exactly the shapes the redactor produces (dict/array/name/
// string/objptr/plain scalars) — existing streams are never
// re-serialized, only referenced by a freshly appended object.
func serializeObject(v interface{}) string {
	switch t := v.(type) {
	case dict:
		var buf bytes.Buffer
		buf.WriteString("<< ")
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, string(k))
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&buf, "/%s %s ", k, serializeObject(t[name(k)]))
		}
		buf.WriteString(">>")
		return buf.String()
	case array:
		var buf bytes.Buffer
		buf.WriteString("[ ")
		for _, item := range t {
			buf.WriteString(serializeObject(item))
			buf.WriteString(" ")
		}
		buf.WriteString("]")
		return buf.String()
	case name:
		return "/" + string(t)
	case objptr:
		return fmt.Sprintf("%d %d R", t.id, t.gen)
	case string:
		return "(" + escapeLiteralString(t) + ")"
	case int64:
		return fmt.Sprintf("%d", t)
	case float64:
		return fmt.Sprintf("%g", t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case nil:
		return "null"
	default:
		return "null"
	}
}

func escapeLiteralString(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '(', ')', '\\':
			buf.WriteByte('\\')
			buf.WriteRune(r)
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}

// maxObjectID scans the reader's cross-reference table for the highest
// object number currently in use, so new objects get fresh ids.
func maxObjectID(r *Reader) int {
	max := 0
	for _, x := range r.xref {
		if int(x.ptr.id) > max {
			max = int(x.ptr.id)
		}
	}
	return max
}

// appendIncrementalUpdate writes every update as a new indirect object
// past the end of out, followed by a plain (non-stream) xref table
// covering exactly those objects, and a trailer whose /Prev points back
// to the document's original startxref — the standard incremental
// update shape that leaves all bytes before it untouched.
func appendIncrementalUpdate(out []byte, updates []objUpdate, r *Reader, prevStartxref int64) []byte {
	var buf bytes.Buffer
	buf.Write(out)
	if len(out) > 0 && out[len(out)-1] != '\n' {
		buf.WriteByte('\n')
	}

	type offsetEntry struct {
		id     int
		gen    uint16
		offset int64
	}
	offsets := make([]offsetEntry, 0, len(updates))

	for _, u := range updates {
		offset := int64(buf.Len())
		fmt.Fprintf(&buf, "%d %d obj\n%s\nendobj\n", u.id, u.gen, u.data)
		offsets = append(offsets, offsetEntry{id: u.id, gen: u.gen, offset: offset})
	}

	xrefOffset := int64(buf.Len())
	buf.WriteString("xref\n")
	sort.Slice(offsets, func(i, j int) bool { return offsets[i].id < offsets[j].id })
	for _, e := range offsets {
		fmt.Fprintf(&buf, "%d 1\n%010d %05d n \n", e.id, e.offset, e.gen)
	}

	maxID := maxObjectID(r)
	for _, e := range offsets {
		if e.id > maxID {
			maxID = e.id
		}
	}

	rootRef := serializeObject(r.trailer[name("Root")])
	buf.WriteString("trailer\n")
	fmt.Fprintf(&buf, "<< /Size %d /Root %s /Prev %d >>\n", maxID+1, rootRef, prevStartxref)
	buf.WriteString("startxref\n")
	fmt.Fprintf(&buf, "%d\n", xrefOffset)
	buf.WriteString("%%EOF\n")

	return buf.Bytes()
}

func readAll(src Source) ([]byte, error) {
	if src.Bytes != nil {
		return src.Bytes, nil
	}
	f, err := os.Open(src.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
