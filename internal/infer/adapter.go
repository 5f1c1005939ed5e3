package infer

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Adapter shapes requests for an Endpoint and extracts the logits of the
// last real position. It records the vocabulary size (declared by the
// endpoint or learned from the first response) and rejects any later
// response whose last axis deviates.
//
// The adapter is stateless with respect to token sequences and safe for
// concurrent use once the vocabulary size is known; discovery of the size on
// the first call is guarded internally.
type Adapter struct {
	endpoint Endpoint
	timeout  time.Duration

	mu        sync.Mutex
	vocabSize int // 0 until discovered
}

// NewAdapter wraps an endpoint. timeout bounds each individual forward pass;
// zero disables the per-call bound. If the endpoint declares its vocabulary
// size it is recorded immediately.
func NewAdapter(ep Endpoint, timeout time.Duration) *Adapter {
	a := &Adapter{endpoint: ep, timeout: timeout}
	if vs, ok := ep.(VocabSizer); ok && ep != nil {
		a.vocabSize = vs.VocabSize()
	}
	return a
}

// VocabSize returns the recorded vocabulary size, or 0 when it has not been
// discovered yet.
func (a *Adapter) VocabSize() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.vocabSize
}

// LastLogits runs a single forward pass over tokens and returns a copy of
// the final position's logits row. tokens is never mutated.
func (a *Adapter) LastLogits(ctx context.Context, tokens []int) ([]float32, error) {
	if a == nil || a.endpoint == nil {
		return nil, ErrEndpointUnavailable("no session bound")
	}
	if len(tokens) == 0 {
		return nil, ErrInvalidPrompt("empty token sequence")
	}

	a.mu.Lock()
	vocab := a.vocabSize
	a.mu.Unlock()

	req := Request{
		InputIDs:      make([]int64, len(tokens)),
		AttentionMask: make([]int64, len(tokens)),
		PositionIDs:   make([]int64, len(tokens)),
	}
	for i, id := range tokens {
		if id < 0 || (vocab > 0 && id >= vocab) {
			return nil, ErrInvalidPrompt("token id out of vocabulary range")
		}
		req.InputIDs[i] = int64(id)
		req.AttentionMask[i] = 1
		req.PositionIDs[i] = int64(i)
	}

	callCtx := ctx
	var cancel context.CancelFunc
	if a.timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	resp, err := a.endpoint.Infer(callCtx, req)
	if err != nil {
		// Distinguish our per-call bound from caller cancellation: only the
		// former maps to EndpointTimeout.
		if a.timeout > 0 && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, ErrEndpointTimeout(a.timeout)
		}
		return nil, err
	}

	if got := len(resp.Logits); got != len(tokens) {
		return nil, ErrShapeMismatch("position", len(tokens), got)
	}
	last := resp.Logits[len(resp.Logits)-1]
	a.mu.Lock()
	if a.vocabSize == 0 {
		if len(last) == 0 {
			a.mu.Unlock()
			return nil, ErrShapeMismatch("vocab", 1, 0)
		}
		a.vocabSize = len(last)
	} else if len(last) != a.vocabSize {
		want := a.vocabSize
		a.mu.Unlock()
		return nil, ErrShapeMismatch("vocab", want, len(last))
	}
	a.mu.Unlock()

	row := make([]float32, len(last))
	copy(row, last)
	return row, nil
}
