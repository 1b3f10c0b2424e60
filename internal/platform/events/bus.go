package events

import (
	"context"
	"sync"
)

// RatingSubmittedHandler reacts to a RatingSubmitted event.
type RatingSubmittedHandler func(ctx context.Context, ev RatingSubmitted)

// Bus is an in-process observer registry. Handlers run synchronously in
// registration order on the publishing goroutine.
type Bus struct {
	mu       sync.RWMutex
	handlers []RatingSubmittedHandler
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers h.
func (b *Bus) Subscribe(h RatingSubmittedHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// PublishRatingSubmitted implements Publisher.
func (b *Bus) PublishRatingSubmitted(ctx context.Context, ev RatingSubmitted) error {
	b.mu.RLock()
	hs := make([]RatingSubmittedHandler, len(b.handlers))
	copy(hs, b.handlers)
	b.mu.RUnlock()

	for _, h := range hs {
		h(ctx, ev)
	}
	return nil
}
