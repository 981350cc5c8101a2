package service

import (
	"errors"
	"fmt"

	"github.com/portalevent/portal-api/internal/repository"
)

var (
	ErrValidationFailed  = errors.New("validation failed")
	ErrBlacklisted       = errors.New("this email address is not allowed to register")
	ErrForbidden         = errors.New("you are not allowed to perform this action")
	ErrAccessDenied      = errors.New("access denied: this ticket belongs to another participant")
	ErrNotReady          = errors.New("certificate not ready: the event has not finished yet")
	ErrNotEligible       = errors.New("not eligible for a certificate: payment has not been verified")
	ErrInvalidTransition = errors.New("event status does not allow this action")
	ErrUnauthenticated   = errors.New("authentication required")
	ErrWrongPassword     = errors.New("wrong password")
	ErrNoPaymentProof    = errors.New("no payment proof was uploaded for this registration")

	ErrUserNotFound           = repository.ErrUserNotFound
	ErrUserEmailExists        = repository.ErrUserEmailExists
	ErrEventNotFound          = repository.ErrEventNotFound
	ErrParticipantNotFound    = repository.ErrParticipantNotFound
	ErrBlacklistEntryExists   = repository.ErrBlacklistEntryExists
	ErrBlacklistEntryNotFound = repository.ErrBlacklistEntryNotFound
)

// ValidationError carries the field errors of a rejected submission and
// matches ErrValidationFailed.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidationFailed, e.Err)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func validationError(err error) error {
	return &ValidationError{Err: err}
}
