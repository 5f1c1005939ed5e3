package infer

import "context"

// Request is the immutable snapshot handed to an Endpoint for one forward
// pass. All three arrays have identical length (batch size is always 1).
type Request struct {
	InputIDs      []int64
	AttentionMask []int64
	PositionIDs   []int64
}

// Len returns the sequence length of the request.
func (r Request) Len() int { return len(r.InputIDs) }

// Response carries per-position vocabulary logits, shaped [positions][vocab].
type Response struct {
	Logits [][]float32
}

// Endpoint abstracts a fixed-shape sequence model session. Given a batch-of-1
// token sequence it returns per-position vocabulary logits. Implementations
// must not retain or mutate the request arrays. Concrete sessions (ONNX,
// remote servers) should satisfy this interface.
type Endpoint interface {
	Infer(ctx context.Context, req Request) (Response, error)
}

// VocabSizer is optionally implemented by endpoints that know their
// vocabulary size up front. Otherwise the adapter learns it from the first
// response's last axis.
type VocabSizer interface {
	VocabSize() int
}
