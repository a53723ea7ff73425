package database

import (
	"errors"
)

var (
	// ErrPoolClosed is returned by Acquire after Shutdown.
	ErrPoolClosed = errors.New("database: pool is shut down")

	// ErrConnectivity wraps failures to establish a session.
	ErrConnectivity = errors.New("database: connection failed")
)

// TransientError marks a connection-level failure that is expected to
// resolve itself: a refused connection, a dropped socket, a timeout.
// Driver adapters wrap their own errors with Transient.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as a TransientError. A nil err stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	var te *TransientError
	if errors.As(err, &te) {
		return err
	}
	return &TransientError{Err: err}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not retryable even if it wraps a transient cause.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsTransient reports whether err should be retried.
func IsTransient(err error) bool {
	var pe *permanentError
	if errors.As(err, &pe) {
		return false
	}
	var te *TransientError
	return errors.As(err, &te)
}
