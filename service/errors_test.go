// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package service

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError_ValidationProducesBadRequest(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/pdf/extract", nil)

	WriteError(rec, req, NewValidationError("bad input", nil))

	assert.Equal(t, 400, rec.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "bad input", body.Error)
	assert.Equal(t, string(KindValidation), body.ErrorType)
	assert.NotEmpty(t, body.ErrorID)
}

func TestWriteError_PersistenceFailureNeverLeaksRawMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/pdf/redact", nil)

	WriteError(rec, req, NewPersistenceFailureError("redaction failed", errors.New("disk full on /var/secret-mount")))

	assert.Equal(t, 500, rec.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotContains(t, body.Error, "disk full")
	assert.NotContains(t, body.Error, "/var/secret-mount")
	assert.Contains(t, body.Error, body.ErrorID)
}

func TestWriteError_PlainErrorIsTreatedAsPersistenceFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/status", nil)

	WriteError(rec, req, errors.New("unexpected"))

	assert.Equal(t, 500, rec.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(KindPersistenceFailure), body.ErrorType)
}

func TestWriteError_CarriesTraceIDFromRequestHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/status", nil)
	req.Header.Set("X-Request-ID", "trace-123")

	WriteError(rec, req, NewTimeoutError("took too long", nil))

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "trace-123", body.TraceID)
	assert.Equal(t, 504, rec.Code)
}
