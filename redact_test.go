// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hideme/pdf-redact-engine/docmodel"
	"github.com/hideme/pdf-redact-engine/syncutil"
)

func TestSerializeObject_Dict(t *testing.T) {
	d := dict{name("Title"): "", name("Count"): int64(3)}
	out := serializeObject(d)
	assert.Contains(t, out, "/Title ()")
	assert.Contains(t, out, "/Count 3")
}

func TestSerializeObject_ObjptrAndArray(t *testing.T) {
	a := array{objptr{id: 5, gen: 0}, objptr{id: 6, gen: 0}}
	out := serializeObject(a)
	assert.Equal(t, "[ 5 0 R 6 0 R ]", out)
}

func TestEscapeLiteralString_EscapesParens(t *testing.T) {
	assert.Equal(t, `a \(b\) c`, escapeLiteralString("a (b) c"))
}

func TestMergeContents_SingleRefBecomesArray(t *testing.T) {
	merged := mergeContents(objptr{id: 3, gen: 0}, objptr{id: 99, gen: 0})
	assert.Equal(t, array{objptr{id: 3, gen: 0}, objptr{id: 99, gen: 0}}, merged)
}

func TestMergeContents_ArrayAppendsPreservingOrder(t *testing.T) {
	orig := array{objptr{id: 1, gen: 0}, objptr{id: 2, gen: 0}}
	merged := mergeContents(orig, objptr{id: 99, gen: 0})
	assert.Len(t, merged, 3)
	assert.Equal(t, objptr{id: 99, gen: 0}, merged[2])
}

func TestRedactionContentStream_EmitsOneRectPerBox(t *testing.T) {
	boxes := []docmodel.BoundingBox{{X0: 0, Y0: 0, X1: 10, Y1: 20}}
	out := redactionContentStream(boxes)
	assert.Equal(t, 1, strings.Count(out, " re f Q"))
	assert.Contains(t, out, "0 0 rg")
}

func TestSanitizedInfoDict_AllFieldsEmpty(t *testing.T) {
	d := sanitizedInfoDict()
	for _, v := range d {
		assert.Equal(t, "", v)
	}
}

func TestRedactor_LockTimeout(t *testing.T) {
	stats := syncutil.NewLockStatistics()
	lock := syncutil.NewTimeoutLock("redactor_instance", syncutil.PriorityHigh, true, 20*time.Millisecond, nil, stats)
	lock.Acquire(context.Background(), "holder", 0)
	defer lock.Release("holder")

	red := &Redactor{cfg: DefaultRedactConfig(), lock: lock}
	_, err := red.Redact(context.Background(), Source{Path: "/nonexistent.pdf"}, docmodel.RedactionMapping{}, RedactOptions{}, "")
	assert.Error(t, err)
}
