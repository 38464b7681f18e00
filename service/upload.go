// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package service

import (
	"io"

	"github.com/gabriel-vasile/mimetype"
)

const maxUploadBytes = 100 * 1024 * 1024

// ReadAllWithValidation reads an uploaded file's body (bounded so a
// single request can't exhaust memory) and sniffs its real content
// type rather than trusting its filename or declared Content-Type,
// rejecting anything that isn't a PDF before it reaches the extractor.
func ReadAllWithValidation(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxUploadBytes+1))
	if err != nil {
		return nil, NewValidationError("failed to read upload", err)
	}
	if len(body) > maxUploadBytes {
		return nil, NewResourceExhaustionError("uploaded file exceeds maximum allowed size", nil)
	}
	mtype := mimetype.Detect(body)
	if !mtype.Is("application/pdf") {
		return nil, NewValidationError("uploaded file is not a PDF (detected "+mtype.String()+")", nil)
	}
	return body, nil
}
