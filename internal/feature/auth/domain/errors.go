// Package domain defines domain-level errors for the auth feature.
package domain

import "errors"

var (
	// ErrInvalidCredentials indicates that the email/password pair was rejected.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrProfileUnavailable indicates that the account was created but its profile could not be stored.
	ErrProfileUnavailable = errors.New("profile could not be stored")
)
