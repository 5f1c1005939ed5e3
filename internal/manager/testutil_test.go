package manager

import (
	"context"
	"time"

	"neurod/internal/infer"
	"neurod/internal/tokenizer"
	"neurod/pkg/types"
)

func syntheticRegistry() []types.Endpoint {
	return []types.Endpoint{
		{ID: "synthetic", Name: "synthetic", Format: types.FormatSynthetic},
		{ID: "synthetic-b", Name: "synthetic-b", Format: types.FormatSynthetic},
	}
}

func newTestManager(cfg ManagerConfig) *Manager {
	if cfg.Registry == nil {
		cfg.Registry = syntheticRegistry()
	}
	if cfg.DefaultEndpoint == "" {
		cfg.DefaultEndpoint = "synthetic"
	}
	return NewWithConfig(cfg)
}

// constantEndpoint always scores the given token highest.
type constantEndpoint int

func (c constantEndpoint) VocabSize() int { return tokenizer.VocabSize }

func (c constantEndpoint) Infer(ctx context.Context, req infer.Request) (infer.Response, error) {
	rows := make([][]float32, req.Len())
	for i := range rows {
		row := make([]float32, tokenizer.VocabSize)
		row[int(c)] = 5
		rows[i] = row
	}
	return infer.Response{Logits: rows}, nil
}

// slowEndpoint blocks until its delay elapses or the context is done.
type slowEndpoint struct {
	delay time.Duration
}

func (s *slowEndpoint) VocabSize() int { return tokenizer.VocabSize }

func (s *slowEndpoint) Infer(ctx context.Context, req infer.Request) (infer.Response, error) {
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return infer.Response{}, ctx.Err()
	}
	rows := make([][]float32, req.Len())
	for i := range rows {
		rows[i] = make([]float32, tokenizer.VocabSize)
	}
	return infer.Response{Logits: rows}, nil
}
