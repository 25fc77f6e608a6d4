package subscription

import (
	"errors"
	"fmt"
)

var (
	// Operation outcomes classified at the Manager boundary.
	ErrNotFound              = errors.New("subscription: subscriber not found")
	ErrForbidden             = errors.New("subscription: subscriber credentials mismatch")
	ErrInvalidArguments      = errors.New("subscription: invalid arguments")
	ErrInvalidLevel          = errors.New("subscription: level transition not permitted")
	ErrProcessorConflict     = errors.New("subscription: existing processor does not match")
	ErrPaymentRequiresAction = errors.New("subscription: payment requires additional customer action")

	// Store outcomes. Implementations of Store report these; the Manager
	// classifies them per operation.
	ErrSubscriberNotFound = errors.New("subscription: subscriber record not stored")
	ErrTagMismatch        = errors.New("subscription: authentication tag mismatch")
	ErrUpdateConflict     = errors.New("subscription: conditional update lost to a concurrent writer")

	ErrProviderNotConfigured    = errors.New("subscription: no processor configured for provider")
	ErrMissingProcessorCustomer = errors.New("subscription: record has no processor customer")

	ErrInvalidLevelsConfig = errors.New("subscription: invalid levels configuration")
)

// ProcessorError is an unclassified payment processor failure carrying the
// provider-defined reason code, so callers can pattern-match on provider
// specifics without depending on a provider SDK error type.
type ProcessorError struct {
	Provider PaymentProvider
	Code     string
	Err      error
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("subscription: processor %s failed with code %q: %v", e.Provider, e.Code, e.Err)
}

func (e *ProcessorError) Unwrap() error {
	return e.Err
}
