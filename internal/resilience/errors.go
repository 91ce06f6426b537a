// Package resilience provides retry and circuit-breaker support for page
// acquisition, plus the error taxonomy shared by both acquisition modes.
package resilience

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
)

// ErrorKind categorizes acquisition failures.
type ErrorKind string

const (
	// KindNetwork covers DNS and connection-level failures. Retryable.
	KindNetwork ErrorKind = "network"
	// KindTimeout covers deadline expiry during fetch or render settle.
	KindTimeout ErrorKind = "timeout"
	// KindRender covers headless-browser failures that are neither network
	// nor timeout (crashed tab, protocol error).
	KindRender ErrorKind = "render"
)

// FetchError tags an acquisition failure with its kind so the orchestrator
// can treat timeouts as blocked-equivalent outcomes without string matching.
type FetchError struct {
	Kind ErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError wraps err with an acquisition error kind.
func NewFetchError(kind ErrorKind, err error) *FetchError {
	return &FetchError{Kind: kind, Err: err}
}

// KindOf extracts the error kind from an error chain. Context deadline and
// net timeouts map to KindTimeout, recognizable network faults to
// KindNetwork, anything else to KindRender.
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}
	return KindRender
}

// IsTransient reports whether an error is safe to retry: network-level
// failures and timeouts, but never render faults or context cancellation.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var fe *FetchError
	if errors.As(err, &fe) && fe.Kind == KindRender {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// Wrapped errors from net/http lose their type; fall back to message
	// heuristics.
	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}
