package manager

import (
	"context"
	"io"
	"time"

	json "github.com/goccy/go-json"

	"neurod/internal/infer"
	"neurod/pkg/types"
)

// Generate centralizes generation behavior. It ensures the endpoint instance
// exists, admits the request through the per-instance FIFO queue, runs the
// decode loop, and streams NDJSON token lines to the provided writer followed
// by a final summary line.
func (m *Manager) Generate(ctx context.Context, req types.GenerateRequest, w io.Writer, flusher func()) error {
	// Resolve target endpoint id
	endpointID := req.Endpoint
	if endpointID == "" {
		endpointID = m.defaultEndpoint
		if endpointID == "" {
			return endpointNotFoundError{id: "(unspecified)"}
		}
	}
	if req.Prompt == "" {
		return infer.ErrInvalidPrompt("empty prompt")
	}
	if err := m.EnsureInstance(ctx, endpointID); err != nil {
		return err
	}
	// Admission: per-instance FIFO queue, single in-flight
	release, err := m.beginGeneration(ctx, endpointID)
	if err != nil {
		return err
	}
	defer release()

	m.mu.RLock()
	inst := m.instances[endpointID]
	m.mu.RUnlock()
	if inst == nil || inst.adapter == nil {
		return infer.ErrEndpointUnavailable(endpointID)
	}

	promptTokens := m.tok.Encode(req.Prompt)
	cfg := infer.Config{
		MaxNewTokens:      req.MaxNewTokens,
		Policy:            m.policyFor(req),
		RepetitionPenalty: req.RepetitionPenalty,
		EOSID:             m.tok.EOSTokenID(),
	}

	onTok := func(id int) error {
		generatedTokensTotal.WithLabelValues(endpointID).Inc()
		if _, e := w.Write(tokenLineJSON(m.tok.Decode([]int{id}))); e != nil {
			return e
		}
		if flusher != nil {
			flusher()
		}
		return nil
	}

	dec := infer.NewDecoder(inst.adapter)
	start := time.Now()
	res, err := dec.DecodeStream(ctx, promptTokens, cfg, onTok)
	generationDuration.WithLabelValues(endpointID).Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}

	final := types.GenerateFinal{
		Done:         true,
		Content:      m.tok.Decode(res.Tokens),
		FinishReason: string(res.Reason),
		Usage: types.Usage{
			PromptTokens:     len(promptTokens),
			CompletionTokens: len(res.Tokens),
			TotalTokens:      len(promptTokens) + len(res.Tokens),
		},
	}
	jb, _ := json.Marshal(final)
	if _, err := w.Write(append(jb, '\n')); err != nil {
		return err
	}
	if flusher != nil {
		flusher()
	}
	return nil
}

// policyFor maps request knobs to a selection policy. Greedy wins when asked
// for explicitly or when the temperature disables sampling.
func (m *Manager) policyFor(req types.GenerateRequest) infer.Policy {
	if req.Greedy || req.Temperature <= 0 {
		return infer.Greedy{}
	}
	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return infer.NewTopPSampler(req.TopP, req.Temperature, seed)
}

// tokenLineJSON formats a token NDJSON line using json.Marshal for correctness.
func tokenLineJSON(tok string) []byte {
	type tokenMsg struct {
		Token string `json:"token"`
	}
	b, _ := json.Marshal(tokenMsg{Token: tok})
	return append(b, '\n')
}
