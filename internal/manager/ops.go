package manager

import (
	"context"
	"strconv"
)

// Preload kicks off an async endpoint bind and returns an operation ID.
// The operation runs in the background; callers can poll Status() to observe
// state transitions.
func (m *Manager) Preload(ctx context.Context, endpointID string) (string, error) {
	op := "op-" + strconv.FormatUint(m.opSeq.Add(1), 10)
	go func() {
		// Use a detached context so background work isn't canceled when the
		// caller context is canceled.
		_ = m.EnsureInstance(context.Background(), endpointID)
	}()
	return op, nil
}
