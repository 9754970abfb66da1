// Package api implements the HTTP client for the platform API: a bearer-token
// JSON dispatcher and the classification of failed exchanges.
package api

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Kind classifies a failed API exchange for the caller's retry decision.
type Kind string

const (
	KindRateLimited      Kind = "rate_limited"
	KindPermissionDenied Kind = "permission_denied"
	KindUnauthorized     Kind = "unauthorized"
	KindOther            Kind = "other"
)

// Error is a classified non-success API response. It is immutable after
// construction and safe to inspect without any further I/O.
type Error struct {
	StatusCode int
	Kind       Kind
	// RetryAfter is the server's retry hint in seconds, nil when the
	// response carried none.
	RetryAfter *int
	// Body is the raw response body, kept for display only and never
	// trusted as structured data.
	Body string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("api error %d (%s)", e.StatusCode, e.Kind)
	if detail := e.Detail(); detail != "" {
		msg += ": " + detail
	}
	if e.RetryAfter != nil {
		msg += fmt.Sprintf(" (retry after %ds)", *e.RetryAfter)
	}
	return msg
}

// Detail extracts a human-readable message from the body on a best-effort
// basis: a message/error/reason field of a JSON object body, otherwise the
// raw body trimmed.
func (e *Error) Detail() string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(e.Body), &obj); err == nil {
		for _, field := range []string{"message", "error", "reason"} {
			var s string
			if raw, ok := obj[field]; ok && json.Unmarshal(raw, &s) == nil && s != "" {
				return s
			}
		}
	}
	return strings.TrimSpace(e.Body)
}

// FromResponse classifies a non-success HTTP exchange. It is pure given its
// inputs: no I/O beyond reading the provided values.
func FromResponse(statusCode int, header http.Header, body []byte) *Error {
	return fromResponseAt(statusCode, header, body, time.Now())
}

func fromResponseAt(statusCode int, header http.Header, body []byte, now time.Time) *Error {
	kind := KindOther
	switch statusCode {
	case http.StatusTooManyRequests:
		kind = KindRateLimited
	case http.StatusForbidden:
		kind = KindPermissionDenied
	case http.StatusUnauthorized:
		kind = KindUnauthorized
	}

	return &Error{
		StatusCode: statusCode,
		Kind:       kind,
		RetryAfter: parseRetryAfter(header.Get("Retry-After"), now),
		Body:       string(body),
	}
}

// parseRetryAfter parses a Retry-After header value: either a non-negative
// integer of seconds or an HTTP-date. Anything else yields nil.
func parseRetryAfter(value string, now time.Time) *int {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return nil
		}
		return &secs
	}

	if date, err := http.ParseTime(value); err == nil {
		secs := int(math.Ceil(date.Sub(now).Seconds()))
		if secs < 0 {
			secs = 0
		}
		return &secs
	}

	return nil
}
