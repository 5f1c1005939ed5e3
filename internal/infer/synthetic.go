package infer

import (
	"context"
	"hash/fnv"
)

// Synthetic is a deterministic, dependency-free endpoint producing
// hash-derived logits. It stands in for a real model session in tests, the
// demo path, and whenever no session file is configured, the same way a
// stubbed runtime adapter would.
type Synthetic struct {
	vocab int
}

// NewSynthetic builds a synthetic endpoint with the given vocabulary size.
func NewSynthetic(vocab int) *Synthetic {
	if vocab <= 0 {
		vocab = 256
	}
	return &Synthetic{vocab: vocab}
}

// VocabSize declares the fixed vocabulary size.
func (s *Synthetic) VocabSize() int { return s.vocab }

// Infer returns logits derived from an FNV hash of the input prefix at each
// position. The same sequence always yields the same response.
func (s *Synthetic) Infer(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	logits := make([][]float32, req.Len())
	h := fnv.New64a()
	var buf [8]byte
	for pos, id := range req.InputIDs {
		putUint64(&buf, uint64(id))
		_, _ = h.Write(buf[:])
		prefix := h.Sum64()

		row := make([]float32, s.vocab)
		for v := range row {
			row[v] = unitLogit(prefix, uint64(v))
		}
		logits[pos] = row
	}
	return Response{Logits: logits}, nil
}

// unitLogit maps (prefix, token) to a stable value in [-4, 4).
func unitLogit(prefix, token uint64) float32 {
	x := prefix ^ (token * 0x9e3779b97f4a7c15)
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	return float32(x%8000)/1000.0 - 4.0
}

func putUint64(buf *[8]byte, v uint64) {
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
}
