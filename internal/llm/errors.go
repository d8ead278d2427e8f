package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// ErrMissingAPIKey is returned before any request is made when the provider
// needs a credential and none is configured.
var ErrMissingAPIKey = errors.New("API key is required")

// Kind classifies completion failures.
type Kind string

const (
	KindUnauthorized Kind = "unauthorized"
	KindRateLimited  Kind = "rate_limited"
	KindStatus       Kind = "status"
	KindTimeout      Kind = "timeout"
	KindUnreachable  Kind = "unreachable"
	KindMalformed    Kind = "malformed"
	KindCanceled     Kind = "canceled"
	KindUnknown      Kind = "unknown"
)

// Error is the typed failure returned by providers.
type Error struct {
	Kind       Kind
	Provider   string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUnauthorized:
		return fmt.Sprintf("%s: invalid API key (status %d)", e.Provider, e.StatusCode)
	case KindRateLimited:
		return fmt.Sprintf("%s: rate limit exceeded (status %d)", e.Provider, e.StatusCode)
	case KindStatus:
		return fmt.Sprintf("%s error (status %d): %v", e.Provider, e.StatusCode, e.Err)
	case KindTimeout:
		return fmt.Sprintf("%s request timed out: %v", e.Provider, e.Err)
	case KindUnreachable:
		return fmt.Sprintf("cannot connect to %s: %v", e.Provider, e.Err)
	case KindMalformed:
		return fmt.Sprintf("malformed response from %s: %v", e.Provider, e.Err)
	case KindCanceled:
		return fmt.Sprintf("%s request canceled", e.Provider)
	default:
		return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func kindForStatus(code int) Kind {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindUnauthorized
	case http.StatusTooManyRequests:
		return KindRateLimited
	default:
		return KindStatus
	}
}

// classify maps go-openai and transport errors onto an *Error.
func classify(provider string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &Error{Kind: kindForStatus(apiErr.HTTPStatusCode), Provider: provider, StatusCode: apiErr.HTTPStatusCode, Err: errors.New(apiErr.Message)}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &Error{Kind: kindForStatus(reqErr.HTTPStatusCode), Provider: provider, StatusCode: reqErr.HTTPStatusCode, Err: reqErr}
	}

	if errors.Is(err, context.Canceled) {
		return &Error{Kind: KindCanceled, Provider: provider, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Provider: provider, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &Error{Kind: KindTimeout, Provider: provider, Err: err}
		}
		return &Error{Kind: KindUnreachable, Provider: provider, Err: err}
	}

	// Transport is fine but the body did not decode.
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &Error{Kind: KindMalformed, Provider: provider, Err: err}
	}
	return &Error{Kind: KindUnknown, Provider: provider, Err: err}
}
