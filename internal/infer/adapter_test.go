package infer

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAdapterRequestShape(t *testing.T) {
	ep := &scriptedEndpoint{vocab: 20}
	a := NewAdapter(ep, 0)
	if _, err := a.LastLogits(context.Background(), []int{4, 8, 15}); err != nil {
		t.Fatalf("infer: %v", err)
	}
	req := ep.lastReq
	if req.Len() != 3 || len(req.AttentionMask) != 3 || len(req.PositionIDs) != 3 {
		t.Fatalf("request arrays must share the sequence length")
	}
	for i := range req.InputIDs {
		if req.AttentionMask[i] != 1 {
			t.Fatalf("attention mask must be all ones")
		}
		if req.PositionIDs[i] != int64(i) {
			t.Fatalf("position ids must be the identity sequence")
		}
	}
	if req.InputIDs[0] != 4 || req.InputIDs[2] != 15 {
		t.Fatalf("input ids not copied in order: %v", req.InputIDs)
	}
}

func TestAdapterNilEndpointUnavailable(t *testing.T) {
	a := NewAdapter(nil, 0)
	_, err := a.LastLogits(context.Background(), []int{1})
	if !IsEndpointUnavailable(err) {
		t.Fatalf("expected endpoint unavailable, got %v", err)
	}
}

func TestAdapterEmptyTokensRejected(t *testing.T) {
	a := NewAdapter(&scriptedEndpoint{vocab: 10}, 0)
	_, err := a.LastLogits(context.Background(), nil)
	if !IsInvalidPrompt(err) {
		t.Fatalf("expected invalid prompt, got %v", err)
	}
}

func TestAdapterDeclaredVocabEnforced(t *testing.T) {
	a := NewAdapter(&scriptedEndpoint{vocab: 50, rowWidth: 10}, 0)
	if a.VocabSize() != 50 {
		t.Fatalf("declared vocab not recorded: %d", a.VocabSize())
	}
	_, err := a.LastLogits(context.Background(), []int{1, 2})
	if !IsShapeMismatch(err) {
		t.Fatalf("expected shape mismatch, got %v", err)
	}
}

func TestAdapterVocabDiscoveryFromFirstResponse(t *testing.T) {
	ep := &anonymousEndpoint{w: 12}
	a := NewAdapter(ep, 0)
	if a.VocabSize() != 0 {
		t.Fatalf("vocab known before first response")
	}
	if _, err := a.LastLogits(context.Background(), []int{1}); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if a.VocabSize() != 12 {
		t.Fatalf("vocab not learned: %d", a.VocabSize())
	}
	// second call widens the row; the recorded size must win
	_, err := a.LastLogits(context.Background(), []int{1})
	if !IsShapeMismatch(err) {
		t.Fatalf("expected shape mismatch on drifting vocab, got %v", err)
	}
}

func TestAdapterPositionAxisMismatch(t *testing.T) {
	ep := endpointFunc(func(ctx context.Context, req Request) (Response, error) {
		return Response{Logits: [][]float32{make([]float32, 8)}}, nil
	})
	a := NewAdapter(ep, 0)
	_, err := a.LastLogits(context.Background(), []int{1, 2, 3})
	if !IsShapeMismatch(err) {
		t.Fatalf("expected position-axis mismatch, got %v", err)
	}
}

func TestAdapterTimeout(t *testing.T) {
	ep := &scriptedEndpoint{vocab: 10, delay: 200 * time.Millisecond}
	a := NewAdapter(ep, 20*time.Millisecond)
	_, err := a.LastLogits(context.Background(), []int{1})
	if !IsEndpointTimeout(err) {
		t.Fatalf("expected endpoint timeout, got %v", err)
	}
}

func TestAdapterCallerCancelIsNotTimeout(t *testing.T) {
	ep := &scriptedEndpoint{vocab: 10, delay: time.Second}
	a := NewAdapter(ep, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := a.LastLogits(ctx, []int{1})
	if IsEndpointTimeout(err) {
		t.Fatalf("caller cancellation misreported as endpoint timeout")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAdapterTokenOutOfRange(t *testing.T) {
	a := NewAdapter(&scriptedEndpoint{vocab: 10}, 0)
	_, err := a.LastLogits(context.Background(), []int{3, 11})
	if !IsInvalidPrompt(err) {
		t.Fatalf("expected invalid prompt for out-of-range id, got %v", err)
	}
}

func TestAdapterDoesNotMutateTokens(t *testing.T) {
	a := NewAdapter(&scriptedEndpoint{vocab: 10}, 0)
	tokens := []int{1, 2, 3}
	if _, err := a.LastLogits(context.Background(), tokens); err != nil {
		t.Fatalf("infer: %v", err)
	}
	if tokens[0] != 1 || tokens[1] != 2 || tokens[2] != 3 {
		t.Fatalf("token sequence mutated: %v", tokens)
	}
}

func TestSyntheticDeterministic(t *testing.T) {
	s := NewSynthetic(32)
	req := Request{
		InputIDs:      []int64{1, 2, 3},
		AttentionMask: []int64{1, 1, 1},
		PositionIDs:   []int64{0, 1, 2},
	}
	a, err := s.Infer(context.Background(), req)
	if err != nil {
		t.Fatalf("infer: %v", err)
	}
	b, _ := s.Infer(context.Background(), req)
	if len(a.Logits) != 3 || len(a.Logits[2]) != 32 {
		t.Fatalf("unexpected shape: %d x %d", len(a.Logits), len(a.Logits[len(a.Logits)-1]))
	}
	for p := range a.Logits {
		for v := range a.Logits[p] {
			if a.Logits[p][v] != b.Logits[p][v] {
				t.Fatalf("synthetic endpoint nondeterministic at [%d][%d]", p, v)
			}
		}
	}
}
