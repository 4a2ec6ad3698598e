package errors

import "errors"

// Domain errors for the redemption campaign
var (
	ErrMalformedCode          = errors.New("code is malformed")
	ErrNotRegistered          = errors.New("participant not registered")
	ErrCodeNotFound           = errors.New("code not found")
	ErrCodeAlreadyAssigned    = errors.New("code already assigned")
	ErrQuotaExceeded          = errors.New("redemption quota exceeded")
	ErrPhoneAlreadyRegistered = errors.New("phone already registered")
	ErrPermissionDenied       = errors.New("permission denied")
	ErrPersistence            = errors.New("persistence error")
)
