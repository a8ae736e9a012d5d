// Package apierrors classifies errors surfaced by the Kubernetes API and
// by sink transports into the permanent/transient taxonomy the rest of
// the pipeline retries (or doesn't) on.
package apierrors

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"

	apistatus "k8s.io/apimachinery/pkg/api/errors"
)

// Kind labels the broad category of a StreamError, mirrored onto log
// fields and onto the Supervisor's error channel.
type Kind string

const (
	KindConfiguration  Kind = "configuration"
	KindStartupProbe   Kind = "startup_probe"
	KindSourceRead     Kind = "source_read"
	KindSinkTransient  Kind = "sink_transient"
	KindSinkFatal      Kind = "sink_fatal"
	KindCancellation   Kind = "cancellation"
)

// StreamError is the pipeline-wide error envelope. It generalizes the
// teacher's LogStreamError with a Kind so the Supervisor can route it
// without re-deriving Permanent from string matching every time.
type StreamError struct {
	Err       error
	Permanent bool
	Kind      Kind
	Reason    string
}

func (e *StreamError) Error() string {
	if e.Reason != "" {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

func (e *StreamError) Unwrap() error { return e.Err }

// New builds a StreamError for the given kind. Whether the error is
// permanent is decided by IsPermanent when the caller doesn't already know.
func New(err error, kind Kind, permanent bool, reason string) *StreamError {
	return &StreamError{Err: err, Permanent: permanent, Kind: kind, Reason: reason}
}

// IsPodDeletedError reports whether err is the normal, expected stream
// termination that happens when the pod/container it was reading from
// is gone. Callers treat this as a clean end of stream, not a failure.
func IsPodDeletedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) {
		return true
	}
	if apistatus.IsNotFound(err) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "container not found") ||
		strings.Contains(errStr, "pod not found") ||
		strings.Contains(errStr, "has been terminated") ||
		strings.Contains(errStr, "has been deleted")
}

// IsPermanent reports whether err should stop retries rather than feed
// into the backoff loop: any 4xx other than 429 (Too Many Requests) from
// the Kubernetes API, and context cancellation, are permanent. 5xx,
// timeouts, and connection resets are transient.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *apistatus.StatusError
	if errors.As(err, &statusErr) {
		code := int(statusErr.Status().Code)
		if code == 429 {
			return false
		}
		if code >= 500 {
			return false
		}
		if code >= 400 {
			return true
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return false
	}

	return false
}

// IsHTTPStatusPermanent classifies a raw HTTP status code the way the
// Web sink needs to, without a Kubernetes apierrors.StatusError to
// unwrap: 4xx other than 429 is a permanent per-delivery failure (drop,
// log, don't retry); 5xx and anything else is transient.
func IsHTTPStatusPermanent(statusCode int) bool {
	if statusCode == 429 {
		return false
	}
	if statusCode >= 500 {
		return false
	}
	return statusCode >= 400
}
