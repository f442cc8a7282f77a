package domain

import "errors"

// Sentinel errors for the application.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrUnauthorized   = errors.New("unauthorized access")
	ErrInvalidPayload = errors.New("invalid payload")
	ErrInternal       = errors.New("internal server error")
)
