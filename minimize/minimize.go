// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package minimize implements GDPR-style data minimization: metadata
// field whitelisting, per-word field stripping, and regex-based PII
// redaction across free-text metadata fields.
package minimize

import (
	"regexp"
	"strings"
	"time"

	"github.com/hideme/pdf-redact-engine/docmodel"
)

// DefaultMetadataFields is the whitelist kept by Minimize when the
// caller does not supply its own.
var DefaultMetadataFields = []string{"document_id", "filename", "pdf_version", "num_pages"}

// sensitiveWordFields names the per-word fields a detector may attach
// upstream that must never reach a minimized response. docmodel.Word
// carries none of them, so nothing reads this list: the non-restrictive
// form of minimizeWord returns the word unchanged.
var sensitiveWordFields = []string{"sensitive", "confidence"}

// Meta records what a Minimize call did, attached to the result so
// downstream consumers and audit logs can see the applied policy.
type Meta struct {
	AppliedAt         time.Time
	RequiredFieldsOnly bool
	FieldsRetained     []string
}

// Result is the minimized form of an docmodel.ExtractedData: the
// original pages with only non-empty words retained (stripped or
// reduced per requiredFieldsOnly), the metadata whitelist applied, and
// a Meta record of the policy that was used.
type Result struct {
	Pages    []docmodel.Page
	Metadata map[string]string
	Meta     Meta
}

// Minimize reduces data to only the fields the minimization policy
// retains, skipping pages whose words all disappear.
func Minimize(data docmodel.ExtractedData, metadataFields []string, requiredFieldsOnly bool) Result {
	if metadataFields == nil {
		metadataFields = DefaultMetadataFields
	}
	fieldSet := make(map[string]bool, len(metadataFields))
	for _, f := range metadataFields {
		fieldSet[f] = true
	}

	meta := make(map[string]string)
	for k, v := range data.Metadata {
		if fieldSet[k] {
			meta[k] = v
		}
	}

	var pages []docmodel.Page
	for _, p := range data.Pages {
		mp := minimizePage(p, requiredFieldsOnly)
		if mp != nil {
			pages = append(pages, *mp)
		}
	}

	return Result{
		Pages:    pages,
		Metadata: meta,
		Meta: Meta{
			AppliedAt:          time.Now(),
			RequiredFieldsOnly: requiredFieldsOnly,
			FieldsRetained:     metadataFields,
		},
	}
}

func minimizePage(page docmodel.Page, requiredFieldsOnly bool) *docmodel.Page {
	var words []docmodel.Word
	for _, w := range page.Words {
		if strings.TrimSpace(w.Text) == "" {
			continue
		}
		words = append(words, minimizeWord(w, requiredFieldsOnly))
	}
	if len(words) == 0 {
		return nil
	}
	return &docmodel.Page{PageNumber: page.PageNumber, Words: words}
}

// minimizeWord either reduces a word to its required positional fields
// (text + bbox) or — in the non-restrictive case — returns it as-is,
// since docmodel.Word carries no sensitive-only fields to strip beyond
// what requiredFieldsOnly already governs. The two branches exist to
// mirror the original's two-mode _minimize_word rather than collapse
// into one, so a future field added to Word has an obvious home.
func minimizeWord(w docmodel.Word, requiredFieldsOnly bool) docmodel.Word {
	if requiredFieldsOnly {
		return docmodel.Word{Text: w.Text, BBox: w.BBox}
	}
	return w
}

var sensitivePatterns = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), "[EMAIL]"},
	{regexp.MustCompile(`\b\d{6}\s?\d{5}\b`), "[ID_NUMBER]"},
	{regexp.MustCompile(`\b(?:[0-9A-Fa-f]{2}[:-]){5}[0-9A-Fa-f]{2}\b`), "[MAC_ADDRESS]"},
	{regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`), "[IP_ADDRESS]"},
	// The broad phone pattern also matches dotted IPs and 11-digit IDs,
	// so it runs after the more specific patterns.
	{regexp.MustCompile(`\b(?:\+\d{1,3}[-.\s]?)?(?:\d{1,4}[-.\s]?){2,5}\d{1,4}\b`), "[PHONE]"},
}

var fieldsToRemove = map[string]bool{
	"author": true, "creator": true, "producer": true, "keywords": true, "owner": true,
	"user": true, "email": true, "phone": true, "address": true, "location": true,
	"gps": true, "coordinates": true, "custom": true, "username": true, "computer": true,
	"device": true, "software": true, "revision": true, "person": true, "modified_by": true,
	"thumbnail": true, "last_modified_by": true, "comment": true, "category": true,
}

var fieldsToSanitize = map[string]string{
	"title":         "[Document Title]",
	"subject":       "[Document Subject]",
	"producer":      "[Software Producer]",
	"creator":       "[Document Creator]",
	"creation_date": "[Creation Date Removed]",
	"mod_date":      "[Modification Date Removed]",
	"last_modified": "[Last Modified Date Removed]",
}

// defaultPreserveFields are left untouched by field removal/sanitization
// even though they are otherwise ordinary metadata fields.
var defaultPreserveFields = []string{"page_count", "version"}

// SanitizeDocumentMetadata replaces identifying metadata fields with
// neutral placeholders, optionally running PII regex substitution
// across every remaining string field except those in preserveFields.
func SanitizeDocumentMetadata(metadata map[string]string, sanitizeAll bool, preserveFields []string) map[string]string {
	if len(metadata) == 0 {
		return map[string]string{}
	}
	if preserveFields == nil {
		preserveFields = defaultPreserveFields
	}
	preserve := make(map[string]bool, len(preserveFields))
	for _, f := range preserveFields {
		preserve[f] = true
	}

	out := make(map[string]string, len(metadata))
	for k, v := range metadata {
		out[k] = v
	}

	for field := range fieldsToRemove {
		if preserve[field] {
			continue
		}
		delete(out, field)
	}

	for field, replacement := range fieldsToSanitize {
		if preserve[field] {
			continue
		}
		if _, exists := out[field]; exists {
			out[field] = replacement
		}
	}

	if sanitizeAll {
		for field, value := range out {
			if preserve[field] {
				continue
			}
			out[field] = applySensitivePatterns(value)
		}
	}

	out["_sanitized"] = "true"
	return out
}

func applySensitivePatterns(value string) string {
	for _, p := range sensitivePatterns {
		value = p.re.ReplaceAllString(value, p.replacement)
	}
	return value
}
