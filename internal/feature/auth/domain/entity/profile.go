// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// UnknownNickname is the display name used when a user has no profile.
const UnknownNickname = "Unknown User"

// Profile is the service-owned part of an account.
// It is created once at registration and never updated.
type Profile struct {
	// UserID is the identity provider's id for the user.
	UserID string `json:"userId"`

	// Email is the address the account was registered with.
	Email string `json:"email"`

	// Nickname is the public display name used as the author of ratings.
	Nickname string `json:"nickname"`

	// CreatedAt is the registration time (serialized as ISO-8601).
	CreatedAt time.Time `json:"createdAt"`
}

// User is the caller-facing view of an account.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

// DisplayName returns the profile's nickname or the fallback when p is nil.
func (p *Profile) DisplayName() string {
	if p == nil || p.Nickname == "" {
		return UnknownNickname
	}
	return p.Nickname
}
