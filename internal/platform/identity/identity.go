// Package identity integrates the delegated identity provider: account creation,
// credential verification and bearer-token resolution.
//
// Two providers are available. Local keeps users in the service's own database
// and signs HS256 tokens; GoTrue talks to a Supabase/GoTrue compatible auth server.
package identity

import (
	"errors"
	"fmt"
)

// Identity is the provider's view of an authenticated user.
type Identity struct {
	ID    string
	Email string
}

// Session is the result of a successful credential check.
type Session struct {
	Identity    Identity
	AccessToken string
}

var (
	// ErrInvalidCredentials is returned by VerifyCredentials for unknown emails or wrong passwords.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidToken is returned by ResolveToken for missing, malformed, revoked or expired tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// RejectionKind classifies why the provider refused to create an account.
type RejectionKind string

const (
	// KindDuplicate means the email is already registered.
	KindDuplicate RejectionKind = "duplicate"
	// KindInvalid means the provider rejected the email or password.
	KindInvalid RejectionKind = "invalid"
)

// ProviderError is a rejection reported by the identity provider.
// Message is the provider's own text and is safe to show to the client.
type ProviderError struct {
	Kind    RejectionKind
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("identity provider rejected request (%s): %s", e.Kind, e.Message)
}

// IsDuplicate reports whether err is a duplicate-email rejection.
func IsDuplicate(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Kind == KindDuplicate
}
