// Package events carries typed notifications about state changes, replacing
// ambient named signals with explicit publishers and subscribers.
package events

import (
	"context"
	"errors"
)

// TopicRatingSubmitted is the channel/topic name used by the external publishers.
const TopicRatingSubmitted = "ratings.submitted"

// RatingSubmitted is published after a rating has been persisted.
type RatingSubmitted struct {
	RatingID    int64  `json:"ratingId"`
	PoiID       string `json:"poiId"`
	UserID      string `json:"userId"`
	Author      string `json:"author"`
	Rating      int    `json:"rating"`
	SubmittedAt int64  `json:"submittedAt"`
}

// Publisher delivers RatingSubmitted events.
type Publisher interface {
	PublishRatingSubmitted(ctx context.Context, ev RatingSubmitted) error
}

// Fanout publishes to every wrapped publisher and joins their errors.
type Fanout []Publisher

// PublishRatingSubmitted implements Publisher.
func (f Fanout) PublishRatingSubmitted(ctx context.Context, ev RatingSubmitted) error {
	var errs []error
	for _, p := range f {
		if err := p.PublishRatingSubmitted(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards events.
type Nop struct{}

// PublishRatingSubmitted implements Publisher.
func (Nop) PublishRatingSubmitted(context.Context, RatingSubmitted) error { return nil }
