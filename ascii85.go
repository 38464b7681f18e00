// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"bytes"
	"io"
)

// alphaReader sits in front of encoding/ascii85's decoder and cleans up
// the handful of PDF producers that pad ASCII85Decode streams with
// stray bytes outside the valid "!".."u" alphabet, or that leave extra
// bytes after the "~>" end-of-data marker. Both would otherwise make
// encoding/ascii85 fail outright.
type alphaReader struct {
	r io.Reader
}

func newAlphaReader(r io.Reader) io.Reader {
	return &alphaReader{r: r}
}

func (a *alphaReader) Read(p []byte) (int, error) {
	n, err := a.r.Read(p)
	if n <= 0 {
		return n, err
	}
	buf := p[:n]
	limit := len(buf)
	if term := bytes.Index(buf, []byte("~>")); term >= 0 {
		limit = term
		for i := term; i < len(buf); i++ {
			buf[i] = 0
		}
	}
	for i := 0; i < limit; i++ {
		if buf[i] < '!' || buf[i] > 'u' {
			buf[i] = 0
		}
	}
	return n, err
}
