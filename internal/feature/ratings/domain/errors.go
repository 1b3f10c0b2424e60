// Package domain defines domain rules and errors for the ratings feature.
package domain

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

const (
	// MinRating and MaxRating bound an accepted rating value.
	MinRating = 1
	MaxRating = 5

	// MaxTextLength is the maximum number of characters in a rating text.
	MaxTextLength = 500
)

var (
	// ErrRatingOutOfRange indicates a rating value outside [MinRating, MaxRating].
	ErrRatingOutOfRange = fmt.Errorf("rating must be between %d and %d", MinRating, MaxRating)

	// ErrTextTooLong indicates a rating text longer than MaxTextLength characters.
	ErrTextTooLong = fmt.Errorf("text must be at most %d characters", MaxTextLength)

	// ErrMissingPoiID indicates an empty point-of-interest id.
	ErrMissingPoiID = errors.New("poi id is required")
)

// Validate checks a submission against the accepted value range and text length.
func Validate(poiID string, rating int, text string) error {
	if poiID == "" {
		return ErrMissingPoiID
	}
	if rating < MinRating || rating > MaxRating {
		return ErrRatingOutOfRange
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return ErrTextTooLong
	}
	return nil
}
