package domain

import (
	"errors"
	"fmt"
)

// Every operation failure surfaces as one of these sentinels (possibly
// wrapped); handlers match with errors.Is to pick a status code. Only
// ErrTransientStore is safe to retry.
var (
	ErrNotFound               = errors.New("not found")
	ErrConflict               = errors.New("an open withdrawal request already exists")
	ErrInvalidAmount          = errors.New("amount is below the platform minimum")
	ErrInsufficientBalance    = errors.New("insufficient available balance")
	ErrWindowClosed           = errors.New("withdrawal window is closed")
	ErrUPIMismatch            = errors.New("upi does not match your verified upi id")
	ErrOTPInvalid             = errors.New("invalid otp")
	ErrOTPExpired             = errors.New("otp has expired")
	ErrOTPConsumed            = errors.New("otp has already been used")
	ErrReasonRequired         = errors.New("rejection reason is required")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrInvalidStateTransition = errors.New("request is already processed")
	ErrTransientStore         = errors.New("transient store error")
)

// Transient tags a storage-layer failure as retryable.
func Transient(err error) error {
	return fmt.Errorf("%w: %v", ErrTransientStore, err)
}
