// Package adapters provides storage implementations for the auth feature.
package adapters

import (
	"context"
	"errors"
	"fmt"

	"chronicle_backend/internal/feature/auth/domain/entity"
	"chronicle_backend/internal/feature/auth/usecase"
	"chronicle_backend/internal/platform/kv"
)

const profileKeyPrefix = "profile:"

// ProfileKV stores profiles as JSON documents at "profile:<userId>".
type ProfileKV struct {
	store kv.Store
}

var _ usecase.ProfileRepository = (*ProfileKV)(nil)

// NewProfileKV creates a ProfileKV backed by store.
func NewProfileKV(store kv.Store) *ProfileKV {
	return &ProfileKV{store: store}
}

// ProfileKey returns the key that holds userID's profile.
func ProfileKey(userID string) string {
	return profileKeyPrefix + userID
}

// Create writes the profile, silently replacing an existing one.
func (r *ProfileKV) Create(ctx context.Context, p *entity.Profile) error {
	if err := r.store.Set(ctx, ProfileKey(p.UserID), p); err != nil {
		return fmt.Errorf("save profile %s: %w", p.UserID, err)
	}
	return nil
}

// FindByUserID returns nil, nil when the user has no profile.
func (r *ProfileKV) FindByUserID(ctx context.Context, userID string) (*entity.Profile, error) {
	var p entity.Profile
	err := r.store.Get(ctx, ProfileKey(userID), &p)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", userID, err)
	}
	return &p, nil
}
