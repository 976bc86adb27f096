package resilience

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"

	apperrors "github.com/bouncr/iam/internal/errors"
)

var (
	// ErrUnavailable is the root of every failure the policy surfaces instead of the call's own error.
	ErrUnavailable = apperrors.Wrap(apperrors.ErrUnavailable, "external service unavailable")

	// ErrCircuitOpen indicates the breaker rejected the call without invoking it.
	ErrCircuitOpen = apperrors.Wrap(ErrUnavailable, "circuit breaker open")

	// ErrRetryExhausted indicates every attempt failed with a transient error.
	ErrRetryExhausted = apperrors.Wrap(ErrUnavailable, "retry attempts exhausted")
)

type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

type rejectionError struct{ err error }

func (e *rejectionError) Error() string { return e.err.Error() }
func (e *rejectionError) Unwrap() error { return e.err }

// Transient marks err as a timeout or transport failure worth retrying.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// Rejection marks err as a definitive answer from the remote side (bad credentials, denied
// grant). Rejections are never retried and do not count as breaker failures.
func Rejection(err error) error {
	if err == nil {
		return nil
	}
	return &rejectionError{err: err}
}

// IsRejection reports whether err was marked with Rejection.
func IsRejection(err error) bool {
	var re *rejectionError
	return errors.As(err, &re)
}

// IsTransient reports whether err belongs to a retryable failure class.
func IsTransient(err error) bool {
	if err == nil || IsRejection(err) {
		return false
	}

	var te *transientError
	if errors.As(err, &te) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	return errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET)
}
