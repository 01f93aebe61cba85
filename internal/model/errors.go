package model

import "errors"

var (
	// ErrNotFound is returned by stores when a record does not exist.
	ErrNotFound = errors.New("not found")

	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
	ErrAccountState       = errors.New("invalid account state")
	ErrRateLimited        = errors.New("rate limited")
	ErrInvalidCredentials = errors.New("invalid user name or password")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrUnauthorized       = errors.New("unauthorized")
)
