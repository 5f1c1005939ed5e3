package notes

import (
	"context"
	"time"

	"neurod/internal/signal"
)

const defaultTopK = 5

// Service pairs the store with the signal simulator: every created note
// captures the features of a freshly generated recording.
type Service struct {
	store *Store
}

// NewService wraps a store.
func NewService(store *Store) *Service { return &Service{store: store} }

// Create simulates a recording (seeded when seed != 0) and stores the note
// with its features.
func (s *Service) Create(ctx context.Context, text string, seed int64) (Note, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rec := signal.Generate(signal.DefaultParams(seed))
	return s.store.Add(ctx, text, rec.Features)
}

// Search returns up to topK ranked matches; topK <= 0 uses the default.
func (s *Service) Search(ctx context.Context, query string, topK int) ([]Match, error) {
	if topK <= 0 {
		topK = defaultTopK
	}
	return s.store.Search(ctx, query, topK)
}

// Count reports the number of stored notes.
func (s *Service) Count() int { return s.store.Len() }
