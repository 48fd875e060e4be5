package assert

import (
	"errors"
	"testing"

	"github.com/axontrace/spikenet/pkg/errs"
)

func TestRequire_NonStrictLogsAndContinues(t *testing.T) {
	SetStrict(false)
	if err := Require(false, "value %d out of range", 7); err != nil {
		t.Fatalf("non-strict Require returned %v, want nil", err)
	}
}

func TestRequire_StrictReturnsAssertionViolation(t *testing.T) {
	SetStrict(true)
	defer SetStrict(false)

	err := Require(false, "value %d out of range", 7)
	if err == nil {
		t.Fatal("strict Require returned nil, want an error")
	}
	if !errors.Is(err, errs.ErrAssertionViolation) {
		t.Fatalf("err = %v, want wrapping errs.ErrAssertionViolation", err)
	}
}

func TestRequire_PassingConditionNeverErrors(t *testing.T) {
	SetStrict(true)
	defer SetStrict(false)

	if err := Require(true, "unreachable"); err != nil {
		t.Fatalf("Require(true, ...) = %v, want nil", err)
	}
}

func TestRequireRange(t *testing.T) {
	SetStrict(true)
	defer SetStrict(false)

	if err := RequireRange(1.5, 0, 2, "weight"); err != nil {
		t.Fatalf("in-range value reported as violation: %v", err)
	}
	if err := RequireRange(3, 0, 2, "weight"); err == nil {
		t.Fatal("out-of-range value did not report a violation")
	}
}

func TestRequirePositive(t *testing.T) {
	SetStrict(true)
	defer SetStrict(false)

	if err := RequirePositive(5, "delay"); err != nil {
		t.Fatalf("positive value reported as violation: %v", err)
	}
	if err := RequirePositive(0, "delay"); err == nil {
		t.Fatal("zero value did not report a violation")
	}
}
