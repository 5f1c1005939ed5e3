package infer

import (
	"context"
	"time"
)

// scriptedEndpoint returns rows whose argmax is a fixed id. Declared vocab
// and response row width can diverge to exercise the shape guard.
type scriptedEndpoint struct {
	vocab     int // declared via VocabSize
	rowWidth  int // width of returned rows; defaults to vocab
	argmaxID  int
	calls     int
	lastReq   Request
	delay     time.Duration
	failatErr error // returned on every call when set
}

func (e *scriptedEndpoint) VocabSize() int { return e.vocab }

func (e *scriptedEndpoint) Infer(ctx context.Context, req Request) (Response, error) {
	e.calls++
	e.lastReq = req
	if e.failatErr != nil {
		return Response{}, e.failatErr
	}
	if e.delay > 0 {
		select {
		case <-time.After(e.delay):
		case <-ctx.Done():
			return Response{}, ctx.Err()
		}
	}
	width := e.rowWidth
	if width == 0 {
		width = e.vocab
	}
	logits := make([][]float32, req.Len())
	for i := range logits {
		row := make([]float32, width)
		for v := range row {
			row[v] = float32(-1)
		}
		if e.argmaxID < width {
			row[e.argmaxID] = 5
		}
		logits[i] = row
	}
	return Response{Logits: logits}, nil
}

// endpointFunc adapts a function to the Endpoint interface.
type endpointFunc func(ctx context.Context, req Request) (Response, error)

func (f endpointFunc) Infer(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// anonymousEndpoint does not declare a vocabulary size; rows have width w.
type anonymousEndpoint struct {
	w     int
	calls int
}

func (e *anonymousEndpoint) Infer(ctx context.Context, req Request) (Response, error) {
	e.calls++
	logits := make([][]float32, req.Len())
	for i := range logits {
		logits[i] = make([]float32, e.w)
	}
	// widen on later calls so the recorded size check trips
	if e.calls > 1 {
		logits[len(logits)-1] = make([]float32, e.w+1)
	}
	return Response{Logits: logits}, nil
}
