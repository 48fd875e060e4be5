// Package assert implements strict/non-strict runtime invariant checking:
// a failed Require always logs, and in strict mode also returns
// errs.ErrAssertionViolation wrapped with the call-site file/line, letting
// the caller decide whether that's fatal for its own operation.
//
// Non-strict (the default) logs and continues; strict mode surfaces the
// violation to the caller instead of silently continuing.
package assert

import (
	"fmt"
	"log"
	"runtime"
	"sync"

	"github.com/axontrace/spikenet/pkg/errs"
)

var (
	mu     sync.RWMutex
	strict bool
)

// SetStrict sets the process-wide assertion mode. Intended to be called
// once at startup, before concurrent invariant checks begin.
func SetStrict(v bool) {
	mu.Lock()
	strict = v
	mu.Unlock()
}

// Strict reports the current assertion mode.
func Strict() bool {
	mu.RLock()
	defer mu.RUnlock()
	return strict
}

// Require checks cond and logs a failure if it does not hold. Returns nil
// in non-strict mode regardless of cond; returns an error wrapping
// errs.ErrAssertionViolation in strict mode when cond is false.
func Require(cond bool, format string, args ...interface{}) error {
	if cond {
		return nil
	}
	_, file, line, _ := runtime.Caller(1)
	msg := fmt.Sprintf(format, args...)
	log.Printf("assertion failed: %s at %s:%d", msg, file, line)
	if Strict() {
		return fmt.Errorf("%w: %s at %s:%d", errs.ErrAssertionViolation, msg, file, line)
	}
	return nil
}

// RequireRange checks min <= value <= max.
func RequireRange(value, min, max float64, name string) error {
	return Require(value >= min && value <= max, "%s = %v out of range [%v, %v]", name, value, min, max)
}

// RequirePositive checks value > 0.
func RequirePositive(value float64, name string) error {
	return Require(value > 0, "%s = %v must be positive", name, value)
}

// RequireNonNegative checks value >= 0.
func RequireNonNegative(value float64, name string) error {
	return Require(value >= 0, "%s = %v must be non-negative", name, value)
}

// RequireNotEmpty checks that n (a container's length) is at least 1.
func RequireNotEmpty(n int, name string) error {
	return Require(n > 0, "%s must not be empty", name)
}
