package service

import (
	"errors"
	"fmt"

	"marketapi/internal/payment"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrForbidden         = errors.New("not allowed")
	ErrConflict          = errors.New("conflicts with existing data")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("booking cannot change to the requested status")
	ErrCapacityExceeded  = errors.New("not enough seats left for this date")
	ErrAlreadyReviewed   = errors.New("booking already has a review")
	ErrAlreadyReplied    = errors.New("review already has a reply")
	ErrPaymentFailed     = errors.New("payment failed")
	ErrPayoutsDisabled   = errors.New("host cannot receive payouts yet")
)

// ValidationError reports a rule violated by caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// PaymentError wraps a gateway failure. Its message is safe to show to users.
type PaymentError struct {
	Op  string
	Err error
}

func (e *PaymentError) Error() string {
	return payment.Message(e.Err)
}

func (e *PaymentError) Is(target error) bool { return target == ErrPaymentFailed }

func (e *PaymentError) Unwrap() error { return e.Err }
