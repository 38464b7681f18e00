// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package service

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hideme/pdf-redact-engine/logger"
)

// ErrorKind classifies a failure the way spec.md §7 enumerates them, so
// the central handler can pick the right HTTP status and message
// without the call site needing to know either.
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindResourceExhaustion ErrorKind = "resource_exhaustion"
	KindDetectionFailure   ErrorKind = "detection_failure"
	KindPersistenceFailure ErrorKind = "persistence_failure"
	KindTimeout            ErrorKind = "timeout"
)

// AppError is the error-kind value every handler returns instead of a
// bare error, per DESIGN NOTES' "exceptions for control flow" guidance.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewValidationError(msg string, err error) *AppError {
	return &AppError{Kind: KindValidation, Message: msg, Err: err}
}

func NewResourceExhaustionError(msg string, err error) *AppError {
	return &AppError{Kind: KindResourceExhaustion, Message: msg, Err: err}
}

func NewDetectionFailureError(msg string, err error) *AppError {
	return &AppError{Kind: KindDetectionFailure, Message: msg, Err: err}
}

func NewPersistenceFailureError(msg string, err error) *AppError {
	return &AppError{Kind: KindPersistenceFailure, Message: msg, Err: err}
}

func NewTimeoutError(msg string, err error) *AppError {
	return &AppError{Kind: KindTimeout, Message: msg, Err: err}
}

func statusForKind(kind ErrorKind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindResourceExhaustion:
		return http.StatusServiceUnavailable
	case KindDetectionFailure:
		return http.StatusUnprocessableEntity
	case KindPersistenceFailure:
		return http.StatusInternalServerError
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// errorResponse is the uniform shape every error surfaces as, per
// spec.md §7: no raw error messages or stack traces ever reach the
// client for persistence failures — only a synthetic reference id.
type errorResponse struct {
	Error      string `json:"error"`
	ErrorID    string `json:"error_id"`
	ErrorType  string `json:"error_type"`
	Status     string `json:"status"`
	StatusCode int    `json:"status_code"`
	TraceID    string `json:"trace_id,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// WriteError is the central error transform: it never lets a raw
// message or stack trace reach the client for a persistence failure,
// substituting a synthetic reference id instead, and logs the real
// cause server-side.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := err.(*AppError)
	if !ok {
		appErr = &AppError{Kind: KindPersistenceFailure, Message: "internal error", Err: err}
	}

	errorID := newErrorID()
	statusCode := statusForKind(appErr.Kind)
	message := appErr.Message
	if appErr.Kind == KindPersistenceFailure {
		logger.Error("service: persistence failure", "error_id", errorID, "err", appErr.Err)
		message = "an internal error occurred; reference " + errorID
	} else if appErr.Err != nil {
		logger.Error("service: request failed", "kind", appErr.Kind, "error_id", errorID, "err", appErr.Err)
	}

	resp := errorResponse{
		Error:      message,
		ErrorID:    errorID,
		ErrorType:  string(appErr.Kind),
		Status:     "error",
		StatusCode: statusCode,
		TraceID:    requestID(r),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

func newErrorID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func requestID(r *http.Request) string {
	if r == nil {
		return ""
	}
	return r.Header.Get("X-Request-ID")
}
