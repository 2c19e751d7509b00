// Package sarerr holds the error classes shared by the planning packages.
// Call sites wrap one of the sentinels with github.com/pkg/errors so the
// class survives the added context:
//
//	return errors.Wrapf(sarerr.ErrLookup, "sweep width for object %d", code)
//
// and callers test the class with errors.Is.
package sarerr

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

var (
	// ErrInputValidation reports malformed or missing case fields,
	// non-monotonic weather timestamps or out of domain codes.
	ErrInputValidation = errors.New("invalid input")

	// ErrGeometry reports a degenerate intersection in the enclosing-box
	// solver. It is carried as a warning on the box, never returned.
	ErrGeometry = errors.New("degenerate geometry")

	// ErrLookup reports a combination absent from a reference table.
	ErrLookup = errors.New("reference table lookup failed")

	// ErrConfiguration reports a formula that would diverge or produce
	// non-finite results.
	ErrConfiguration = errors.New("configuration would diverge")
)

// Invalid wraps ErrInputValidation with a formatted message
func Invalid(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInputValidation, format, args...)
}

// Class returns the sentinel err belongs to, or nil
func Class(err error) error {
	for _, class := range []error{ErrInputValidation, ErrGeometry, ErrLookup, ErrConfiguration} {
		if stderrors.Is(err, class) {
			return class
		}
	}
	return nil
}
