package utils

import (
	"errors"
	"fmt"
)

var ErrorRecordNotFound = errors.New("record not found")

// Sentinel errors for the tenancy / allocation domain. Handlers map these
// onto HTTP status codes; everything else is a 500.
var (
	ErrUnauthenticated       = errors.New("unauthenticated")
	ErrTenantContextMissing  = errors.New("no tenant mapping for identity")
	ErrInvalidTransition     = errors.New("invalid allocation status transition")
	ErrAllocationOverrun     = errors.New("distributions exceed parent available amount")
	ErrApprovalLimitExceeded = errors.New("amount exceeds role approval ceiling")
)

// DeniedError is returned when a tenant isolation or cross-tenant check
// refuses an operation. Reason is safe to surface to the caller.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("access denied: %s", e.Reason)
}

func Denied(reason string) error {
	return &DeniedError{Reason: reason}
}

func IsDenied(err error) bool {
	var de *DeniedError
	return errors.As(err, &de)
}

// ValidationError reports malformed or incomplete input. Handlers map it to
// a 400 with Reason as the message.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func Validation(reason string) error {
	return &ValidationError{Reason: reason}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
