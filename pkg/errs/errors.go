// Package errs holds the sentinel errors shared across the runtime.
package errs

import "errors"

var (
	ErrIDSpaceExhausted   = errors.New("id space exhausted for kind")
	ErrUnknownKind        = errors.New("unknown id kind")
	ErrOutOfWindow        = errors.New("event time outside scheduler window")
	ErrUnknownEntity      = errors.New("unknown entity id")
	ErrUnknownStrategy    = errors.New("unknown pattern-update strategy")
	ErrUnknownTypeTag     = errors.New("unknown entity type tag")
	ErrSizeMismatch       = errors.New("pattern size mismatch")
	ErrSerialization      = errors.New("serialization failure")
	ErrNotRunning         = errors.New("scheduler is not running")
	ErrAlreadyRunning     = errors.New("scheduler is already running")
	ErrSelfLink           = errors.New("cannot link entity to itself")
	ErrRecordNotFound     = errors.New("record not found in backing store")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrPoolStopped        = errors.New("worker pool is stopped")
	ErrAssertionViolation = errors.New("assertion violation")
)
