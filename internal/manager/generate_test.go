package manager

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"neurod/internal/infer"
	"neurod/pkg/types"
)

type streamLine struct {
	Token        string      `json:"token"`
	Done         bool        `json:"done"`
	Content      string      `json:"content"`
	FinishReason string      `json:"finish_reason"`
	Usage        types.Usage `json:"usage"`
}

func parseStream(t *testing.T, buf *bytes.Buffer) ([]streamLine, streamLine) {
	t.Helper()
	var tokens []streamLine
	var final streamLine
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) == 0 {
		t.Fatalf("empty stream")
	}
	for i, ln := range lines {
		var sl streamLine
		if err := json.Unmarshal([]byte(ln), &sl); err != nil {
			t.Fatalf("bad NDJSON line %d: %v (%q)", i, err, ln)
		}
		if sl.Done {
			final = sl
		} else {
			tokens = append(tokens, sl)
		}
	}
	if !final.Done {
		t.Fatalf("missing final line in %q", buf.String())
	}
	return tokens, final
}

func TestGenerateStreamsNDJSON(t *testing.T) {
	m := newTestManager(ManagerConfig{})
	var buf bytes.Buffer
	flushes := 0
	err := m.Generate(context.Background(), types.GenerateRequest{
		Prompt:       "alpha waves",
		MaxNewTokens: 4,
		Greedy:       true,
	}, &buf, func() { flushes++ })
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	tokens, final := parseStream(t, &buf)
	if final.Usage.PromptTokens != len("alpha waves")+1 {
		t.Fatalf("prompt tokens: got %d", final.Usage.PromptTokens)
	}
	if final.Usage.CompletionTokens != len(tokens) {
		t.Fatalf("completion tokens %d != %d streamed lines", final.Usage.CompletionTokens, len(tokens))
	}
	if final.Usage.TotalTokens != final.Usage.PromptTokens+final.Usage.CompletionTokens {
		t.Fatalf("usage total inconsistent: %+v", final.Usage)
	}
	var joined strings.Builder
	for _, tok := range tokens {
		joined.WriteString(tok.Token)
	}
	if final.Content != joined.String() {
		t.Fatalf("final content %q != streamed tokens %q", final.Content, joined.String())
	}
	if final.FinishReason != "eos" && final.FinishReason != "max_length" {
		t.Fatalf("unexpected finish reason %q", final.FinishReason)
	}
	if flushes == 0 {
		t.Fatalf("flusher never invoked")
	}
}

func TestGenerateGreedyDeterministic(t *testing.T) {
	m := newTestManager(ManagerConfig{})
	run := func() string {
		var buf bytes.Buffer
		if err := m.Generate(context.Background(), types.GenerateRequest{
			Prompt:       "theta rhythm",
			MaxNewTokens: 8,
			Greedy:       true,
		}, &buf, nil); err != nil {
			t.Fatalf("generate: %v", err)
		}
		return buf.String()
	}
	if a, b := run(), run(); a != b {
		t.Fatalf("greedy decoding must be reproducible:\n%q\n%q", a, b)
	}
}

func TestGenerateSeededSamplingDeterministic(t *testing.T) {
	m := newTestManager(ManagerConfig{})
	run := func(seed int64) string {
		var buf bytes.Buffer
		if err := m.Generate(context.Background(), types.GenerateRequest{
			Prompt:       "beta burst",
			MaxNewTokens: 8,
			Temperature:  0.8,
			TopP:         0.9,
			Seed:         seed,
		}, &buf, nil); err != nil {
			t.Fatalf("generate: %v", err)
		}
		return buf.String()
	}
	if a, b := run(7), run(7); a != b {
		t.Fatalf("same seed must reproduce the stream:\n%q\n%q", a, b)
	}
}

func TestGenerateEmptyPrompt(t *testing.T) {
	m := newTestManager(ManagerConfig{})
	var buf bytes.Buffer
	err := m.Generate(context.Background(), types.GenerateRequest{MaxNewTokens: 4}, &buf, nil)
	if !infer.IsInvalidPrompt(err) {
		t.Fatalf("expected invalid-prompt, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("nothing should be written on rejection, got %q", buf.String())
	}
}

func TestGenerateUnknownEndpoint(t *testing.T) {
	m := newTestManager(ManagerConfig{})
	var buf bytes.Buffer
	err := m.Generate(context.Background(), types.GenerateRequest{
		Endpoint: "nope",
		Prompt:   "x",
	}, &buf, nil)
	if !IsEndpointNotFound(err) {
		t.Fatalf("expected endpoint-not-found, got %v", err)
	}
}

func TestGenerateNoDefaultEndpoint(t *testing.T) {
	m := NewWithConfig(ManagerConfig{Registry: syntheticRegistry()})
	var buf bytes.Buffer
	err := m.Generate(context.Background(), types.GenerateRequest{Prompt: "x"}, &buf, nil)
	if !IsEndpointNotFound(err) {
		t.Fatalf("expected endpoint-not-found, got %v", err)
	}
}

func TestGenerateZeroBudgetEmitsEmptyFinal(t *testing.T) {
	m := newTestManager(ManagerConfig{})
	var buf bytes.Buffer
	if err := m.Generate(context.Background(), types.GenerateRequest{
		Prompt: "x",
	}, &buf, nil); err != nil {
		t.Fatalf("generate: %v", err)
	}
	tokens, final := parseStream(t, &buf)
	if len(tokens) != 0 {
		t.Fatalf("no tokens expected for zero budget, got %d", len(tokens))
	}
	if final.Content != "" || final.FinishReason != "max_length" {
		t.Fatalf("unexpected final line: %+v", final)
	}
	if final.Usage.CompletionTokens != 0 {
		t.Fatalf("completion tokens must be 0, got %d", final.Usage.CompletionTokens)
	}
}

// cancelAfterFirstWrite cancels its context on the first streamed token so the
// decode loop observes cancellation between steps.
type cancelAfterFirstWrite struct {
	buf    bytes.Buffer
	cancel context.CancelFunc
	wrote  bool
}

func (c *cancelAfterFirstWrite) Write(p []byte) (int, error) {
	if !c.wrote {
		c.wrote = true
		c.cancel()
	}
	return c.buf.Write(p)
}

func TestGenerateCancellationYieldsPartialStream(t *testing.T) {
	// constant endpoint that always prefers 'A', so EOS never fires
	m := newTestManager(ManagerConfig{
		Opener: func(types.Endpoint) (infer.Endpoint, error) { return constantEndpoint('A'), nil },
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := &cancelAfterFirstWrite{cancel: cancel}
	err := m.Generate(ctx, types.GenerateRequest{
		Prompt:       "delta sleep",
		MaxNewTokens: 50,
		Greedy:       true,
	}, w, nil)
	if err != nil {
		t.Fatalf("cancellation must not surface as an error, got %v", err)
	}
	tokens, final := parseStream(t, &w.buf)
	if final.FinishReason != "cancelled" {
		t.Fatalf("expected cancelled finish reason, got %q", final.FinishReason)
	}
	if len(tokens) == 0 || len(tokens) >= 50 {
		t.Fatalf("expected a partial stream, got %d tokens", len(tokens))
	}
}

func TestGenerateStepTimeout(t *testing.T) {
	slow := &slowEndpoint{delay: 500 * time.Millisecond}
	m := newTestManager(ManagerConfig{
		StepTimeout: 20 * time.Millisecond,
		Opener:      func(types.Endpoint) (infer.Endpoint, error) { return slow, nil },
	})
	var buf bytes.Buffer
	err := m.Generate(context.Background(), types.GenerateRequest{
		Prompt:       "x",
		MaxNewTokens: 2,
		Greedy:       true,
	}, &buf, nil)
	if !infer.IsEndpointTimeout(err) {
		t.Fatalf("expected endpoint timeout, got %v", err)
	}
}

func TestGenerateOpenerFailureSurfaces(t *testing.T) {
	m := newTestManager(ManagerConfig{
		Opener: func(types.Endpoint) (infer.Endpoint, error) {
			return nil, infer.ErrEndpointUnavailable("runtime offline")
		},
	})
	var buf bytes.Buffer
	err := m.Generate(context.Background(), types.GenerateRequest{Prompt: "x", MaxNewTokens: 1}, &buf, nil)
	if !infer.IsEndpointUnavailable(err) {
		t.Fatalf("expected endpoint-unavailable, got %v", err)
	}
}
