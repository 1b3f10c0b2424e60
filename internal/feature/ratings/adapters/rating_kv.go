// Package adapters provides storage implementations for the ratings feature.
package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"chronicle_backend/internal/feature/ratings/domain/entity"
	"chronicle_backend/internal/feature/ratings/usecase"
	"chronicle_backend/internal/platform/kv"
)

const ratingsKeyPrefix = "ratings:"

// RatingKV keeps each point of interest's ratings as one JSON array at
// "ratings:<poiId>", newest first.
//
// Prepend is a read-modify-write of the whole list without any guard: two
// concurrent writers to the same key can lose one of the updates.
type RatingKV struct {
	store kv.Store
}

var _ usecase.RatingRepository = (*RatingKV)(nil)

// NewRatingKV creates a RatingKV backed by store.
func NewRatingKV(store kv.Store) *RatingKV {
	return &RatingKV{store: store}
}

// RatingsKey returns the key that holds poiID's rating list.
func RatingsKey(poiID string) string {
	return ratingsKeyPrefix + poiID
}

// List returns the ratings of poiID, newest first. A missing key is an empty list.
func (r *RatingKV) List(ctx context.Context, poiID string) ([]entity.Rating, error) {
	var list []entity.Rating
	err := r.store.Get(ctx, RatingsKey(poiID), &list)
	if errors.Is(err, kv.ErrNotFound) {
		return []entity.Rating{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load ratings %s: %w", poiID, err)
	}
	if list == nil {
		list = []entity.Rating{}
	}
	return list, nil
}

// Prepend puts rating at the front of its list and writes the list back.
func (r *RatingKV) Prepend(ctx context.Context, rating entity.Rating) error {
	list, err := r.List(ctx, rating.PoiID)
	if err != nil {
		return err
	}

	merged := make([]entity.Rating, 0, len(list)+1)
	merged = append(merged, rating)
	merged = append(merged, list...)

	if err := r.store.Set(ctx, RatingsKey(rating.PoiID), merged); err != nil {
		return fmt.Errorf("save ratings %s: %w", rating.PoiID, err)
	}
	return nil
}

// ListAll returns every stored rating list keyed by point-of-interest id.
// Lists that fail to decode are skipped and logged.
func (r *RatingKV) ListAll(ctx context.Context) (map[string][]entity.Rating, error) {
	entries, err := r.store.GetByPrefix(ctx, ratingsKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("scan ratings: %w", err)
	}

	out := make(map[string][]entity.Rating, len(entries))
	for _, e := range entries {
		var list []entity.Rating
		if err := json.Unmarshal(e.Value, &list); err != nil {
			slog.Warn("skipping undecodable rating list", "key", e.Key, "error", err)
			continue
		}
		out[strings.TrimPrefix(e.Key, ratingsKeyPrefix)] = list
	}
	return out, nil
}
