package config

import (
	"errors"
	"fmt"
)

// Failure classes carried by LoadError. Match them with errors.Is.
var (
	ErrFetch         = errors.New("fetch failed")
	ErrDecode        = errors.New("decode failed")
	ErrDepthExceeded = errors.New("manifest depth limit exceeded")
	ErrAlreadyLoaded = errors.New("manifest already loaded")
)

// LoadError reports the failure of a single document branch. Sibling
// branches and already delivered batches are unaffected.
type LoadError struct {
	Ref   string
	Depth int
	Kind  error
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("load %s: %v", e.Ref, e.Kind)
	}
	return fmt.Sprintf("load %s: %v: %v", e.Ref, e.Kind, e.Cause)
}

// Unwrap exposes both the failure class and the underlying cause.
func (e *LoadError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}
