// pkg/faults/faults.go
package faults

import (
	"errors"
	"fmt"
)

// Sentinel classes for the bridge core. Callers classify with errors.Is and
// attach detail with fmt.Errorf("...: %w", ...).
var (
	// ErrUnauthorized: no matching tenant, ambiguous match, or client mismatch.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden: authenticated but denied by policy (e.g. group membership).
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound: legitimate negative result, not a failure.
	ErrNotFound = errors.New("not found")
	// ErrValidation: rejected before any network call.
	ErrValidation = errors.New("validation failed")
	// ErrBackend: orchestration service failure other than not-found.
	ErrBackend = errors.New("backend error")
	// ErrAdapter: identity-provider client failure, local to one lookup.
	ErrAdapter = errors.New("identity adapter error")
)

func Unauthorized(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrUnauthorized)...)
}

func Forbidden(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrForbidden)...)
}

func Validation(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

func Backend(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, ErrBackend)
}

func Adapter(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, ErrAdapter)
}
