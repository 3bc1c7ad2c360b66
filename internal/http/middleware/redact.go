// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements Redactor, which scrubs obvious PII from request
// metadata before Logger emits it. Order intake carries customer names and
// phone numbers, and session IDs double as bearer handles, so query strings
// and headers are never logged verbatim.
//
// Redactor never sees request or response bodies; those are not logged.
package middleware

import (
	"net/http"
	"regexp"
	"strings"
)

const redactedValue = "[REDACTED]"

var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Digits-only phone pattern (prevents matching hex characters from UUIDs).
	// Matches "+91 98765 43210", "9999999999", "(212) 555-1212".
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,5}[ .-]?\d{4,5}\b`)
)

// Redactor replaces identifiers in free text and masks sensitive headers.
// The zero value is not usable; build one with NewRedactor.
type Redactor struct {
	maskHeaders map[string]struct{}
}

// NewRedactor returns a Redactor that fully masks Authorization, Cookie,
// Set-Cookie and any extra header names given (case-insensitive).
func NewRedactor(extraMasked ...string) *Redactor {
	m := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range extraMasked {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			m[h] = struct{}{}
		}
	}
	return &Redactor{maskHeaders: m}
}

// String scrubs UUIDs, emails and phone numbers from s. UUIDs go first so the
// loose phone pattern cannot eat their digit groups.
func (r *Redactor) String(s string) string {
	if s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
}

// Headers flattens h into a loggable map with masked and scrubbed values.
func (r *Redactor) Headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if _, ok := r.maskHeaders[strings.ToLower(k)]; ok {
			out[k] = redactedValue
			continue
		}
		out[k] = r.String(strings.Join(vv, ", "))
	}
	return out
}
