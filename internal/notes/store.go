// Package notes stores signal-annotated notes and retrieves them by semantic
// similarity. Vectors live in an in-process HNSW graph; the embedding model
// is an injected collaborator.
package notes

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/coder/hnsw"
	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"

	"neurod/internal/signal"
)

// Embedder turns text into a vector. Implementations must be safe for
// concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Note is one stored entry: the user's text plus the features of the
// simulated recording captured with it.
type Note struct {
	ID          string          `json:"id"`
	Text        string          `json:"text"`
	CreatedUnix int64           `json:"created_unix"`
	Signal      signal.Features `json:"signal"`
}

// Match is a search hit with its cosine similarity score.
type Match struct {
	Note  Note    `json:"note"`
	Score float32 `json:"score"`
}

// Store indexes notes by embedding. Reads and writes are safe for
// concurrent use; the graph and metadata map share one RWMutex.
type Store struct {
	embedder Embedder

	mu    sync.RWMutex
	graph *hnsw.Graph[string]
	notes map[string]Note

	// queryCache avoids re-embedding repeated interactive queries.
	queryCache *ttlcache.Cache[string, []float32]

	closeOnce sync.Once
}

// NewStore creates an empty store. queryTTL bounds how long query embeddings
// are reused; zero or negative disables the cache.
func NewStore(embedder Embedder, queryTTL time.Duration) *Store {
	s := &Store{
		embedder: embedder,
		graph:    hnsw.NewGraph[string](),
		notes:    make(map[string]Note),
	}
	if queryTTL > 0 {
		s.queryCache = ttlcache.New[string, []float32](
			ttlcache.WithTTL[string, []float32](queryTTL),
		)
		go s.queryCache.Start()
	}
	return s
}

// Add embeds text and inserts a new note. The returned note carries its
// generated id.
func (s *Store) Add(ctx context.Context, text string, feat signal.Features) (Note, error) {
	if text == "" {
		return Note{}, fmt.Errorf("empty note text")
	}
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return Note{}, fmt.Errorf("embed note: %w", err)
	}

	note := Note{
		ID:          uuid.NewString(),
		Text:        text,
		CreatedUnix: time.Now().Unix(),
		Signal:      feat,
	}

	s.mu.Lock()
	s.graph.Add(hnsw.MakeNode(note.ID, vec))
	s.notes[note.ID] = note
	s.mu.Unlock()
	return note, nil
}

// Get returns a stored note by id.
func (s *Store) Get(id string) (Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notes[id]
	return n, ok
}

// Len reports the number of stored notes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}

// Search embeds the query and returns up to topK notes ranked by cosine
// similarity.
func (s *Store) Search(ctx context.Context, query string, topK int) ([]Match, error) {
	if topK <= 0 {
		return nil, nil
	}
	vec, err := s.queryVector(ctx, query)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.graph.Len() == 0 {
		return nil, nil
	}

	neighbors := s.graph.Search(vec, topK)
	matches := make([]Match, 0, len(neighbors))
	for _, n := range neighbors {
		note, ok := s.notes[n.Key]
		if !ok {
			continue
		}
		matches = append(matches, Match{Note: note, Score: cosine(vec, n.Value)})
	}
	return matches, nil
}

func (s *Store) queryVector(ctx context.Context, query string) ([]float32, error) {
	if s.queryCache != nil {
		if item := s.queryCache.Get(query); item != nil {
			return item.Value(), nil
		}
	}
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if s.queryCache != nil {
		s.queryCache.Set(query, vec, ttlcache.DefaultTTL)
	}
	return vec, nil
}

// Close releases the cache's background goroutine.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		if s.queryCache != nil {
			s.queryCache.Stop()
		}
	})
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
