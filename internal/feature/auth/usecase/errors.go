package usecase

import "errors"

var (
	// ErrMissingUserID is returned when an operation needs an authenticated user id.
	ErrMissingUserID = errors.New("user id is required")
)
