// Package advisorerr defines the sentinel error kinds shared across the
// advisor's components, plus the Is* predicates used to classify an error
// regardless of how many times it was wrapped with fmt.Errorf("%w: ...").
package advisorerr

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigInvalid is returned when a run's configuration is malformed:
	// an unknown key, a budget/width that fails validation, a missing
	// connector DSN.
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrEvaluatorSealed is returned when a cost evaluator is asked to score
	// a combination after Complete has been called on it.
	ErrEvaluatorSealed = errors.New("cost evaluator is sealed")

	// ErrConnectorFailure wraps a failure talking to the underlying
	// database connector: connection refused, query error, extension
	// missing.
	ErrConnectorFailure = errors.New("connector failure")

	// ErrSizeUnknown is returned when an index's estimated size could not
	// be determined and the caller required a known value.
	ErrSizeUnknown = errors.New("index size unknown")

	// ErrInternal marks a failure that indicates a bug in the advisor
	// itself rather than a problem with input or environment.
	ErrInternal = errors.New("internal advisor error")
)

// ConfigInvalid wraps err (or, with no err, builds a fresh error) as
// ErrConfigInvalid with additional context.
func ConfigInvalid(context string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrConfigInvalid, context)
	}
	return fmt.Errorf("%w: %s: %v", ErrConfigInvalid, context, err)
}

// ConnectorFailure wraps err as ErrConnectorFailure with additional context.
func ConnectorFailure(context string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrConnectorFailure, context, err)
}

// SizeUnknown builds an ErrSizeUnknown for the given index description.
func SizeUnknown(indexDesc string) error {
	return fmt.Errorf("%w: %s", ErrSizeUnknown, indexDesc)
}

// Internal wraps err as ErrInternal with additional context.
func Internal(context string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrInternal, context, err)
}

// IsConfigInvalid reports whether err is or wraps ErrConfigInvalid.
func IsConfigInvalid(err error) bool {
	return errors.Is(err, ErrConfigInvalid)
}

// IsEvaluatorSealed reports whether err is or wraps ErrEvaluatorSealed.
func IsEvaluatorSealed(err error) bool {
	return errors.Is(err, ErrEvaluatorSealed)
}

// IsConnectorFailure reports whether err is or wraps ErrConnectorFailure.
func IsConnectorFailure(err error) bool {
	return errors.Is(err, ErrConnectorFailure)
}

// IsSizeUnknown reports whether err is or wraps ErrSizeUnknown.
func IsSizeUnknown(err error) bool {
	return errors.Is(err, ErrSizeUnknown)
}

// IsInternal reports whether err is or wraps ErrInternal.
func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal)
}
