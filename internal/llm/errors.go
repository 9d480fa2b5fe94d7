package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ideavault/ideavault-backend/internal/clients/gemini"
	"github.com/ideavault/ideavault-backend/internal/pkg/httpx"
)

type ErrorKind string

const (
	KindQuota         ErrorKind = "quota"
	KindAuth          ErrorKind = "auth"
	KindSafety        ErrorKind = "safety"
	KindModelNotFound ErrorKind = "model_not_found"
	KindTimeout       ErrorKind = "timeout"
	KindTransient     ErrorKind = "transient"
	KindNotConfigured ErrorKind = "not_configured"
	KindUnknown       ErrorKind = "unknown"
)

// Retryable reports whether another attempt could succeed.
func (k ErrorKind) Retryable() bool {
	return k == KindTimeout || k == KindTransient
}

// fallbackEligible kinds turn into the deterministic fallback report. Only
// a missing client and timeouts reach the caller.
func (k ErrorKind) fallbackEligible() bool {
	switch k {
	case KindQuota, KindAuth, KindSafety, KindModelNotFound, KindTransient, KindUnknown:
		return true
	}
	return false
}

// Error is a classified LLM failure. Its message uses the wording the HTTP
// layer maps to statuses ("API key", "quota", "timeout").
type Error struct {
	Kind   ErrorKind
	Status int
	Op     string
	Err    error
}

func (e *Error) Error() string {
	var what string
	switch e.Kind {
	case KindQuota:
		what = "quota exceeded (429)"
	case KindAuth:
		what = "invalid API key"
	case KindSafety:
		what = "response blocked by safety filters"
	case KindModelNotFound:
		what = "model not found (404)"
	case KindTimeout:
		what = "request timeout"
	case KindNotConfigured:
		what = "Gemini API key is not configured"
	default:
		what = "upstream error"
	}
	if e.Err != nil {
		return fmt.Sprintf("llm %s: %s: %v", e.Op, what, e.Err)
	}
	return fmt.Sprintf("llm %s: %s", e.Op, what)
}

func (e *Error) Unwrap() error { return e.Err }

func KindOf(err error) ErrorKind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return Classify(err)
}

// Classify maps a raw client error onto an ErrorKind using the HTTP status
// when available, then the error text.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if errors.Is(err, gemini.ErrNotConfigured) {
		return KindNotConfigured
	}
	if errors.Is(err, gemini.ErrSafetyBlocked) || errors.Is(err, gemini.ErrEmptyResponse) {
		return KindSafety
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var sc httpx.HTTPStatusCoder
	if errors.As(err, &sc) {
		switch code := sc.HTTPStatusCode(); {
		case code == 429:
			return KindQuota
		case code == 401 || code == 403:
			return KindAuth
		case code == 404:
			return KindModelNotFound
		case code == 408:
			return KindTimeout
		case code == 400 && containsAny(strings.ToLower(err.Error()), "api key", "api_key"):
			return KindAuth
		case code >= 500:
			return KindTransient
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "quota", "rate limit", "resource_exhausted", "resource has been exhausted", "429"):
		return KindQuota
	case containsAny(msg, "api key", "api_key", "unauthenticated", "permission_denied", "401"):
		return KindAuth
	case containsAny(msg, "safety", "blocked", "content_filter"):
		return KindSafety
	case containsAny(msg, "model not found", "is not found for api version", "404"):
		return KindModelNotFound
	case containsAny(msg, "timeout", "deadline exceeded"):
		return KindTimeout
	}
	if httpx.IsRetryableError(err) {
		return KindTransient
	}
	return KindUnknown
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
