package reference

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies why a reference page could not be used.
type Kind string

const (
	KindInvalidURL  Kind = "invalid_url"
	KindTimeout     Kind = "timeout"
	KindUnreachable Kind = "unreachable"
	KindStatus      Kind = "status"
	KindParse       Kind = "parse"
)

type FetchError struct {
	Kind   Kind
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	case KindTimeout:
		return fmt.Sprintf("fetch %s: timed out", e.URL)
	default:
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or "" when err is not a *FetchError.
func KindOf(err error) Kind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

func classify(rawURL string, status int, err error) *FetchError {
	if status >= 300 {
		return &FetchError{Kind: KindStatus, URL: rawURL, Status: status, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &FetchError{Kind: KindTimeout, URL: rawURL, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &FetchError{Kind: KindTimeout, URL: rawURL, Err: err}
	}
	return &FetchError{Kind: KindUnreachable, URL: rawURL, Err: err}
}
