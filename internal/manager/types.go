package manager

import (
	"time"

	"neurod/internal/infer"
)

// State represents lifecycle state of the manager/instances.
type State string

const (
	StateReady    State = "ready"
	StateLoading  State = "loading"
	StateDraining State = "draining"
	StateError    State = "error"
)

// Snapshot is a read-only projection of the manager state.
type Snapshot struct {
	State     State
	CurrentID string
	Err       string
}

// Instance represents a live endpoint binding (one per endpoint id).
type Instance struct {
	ID       string
	State    State
	LastUsed time.Time
	EstMemMB int
	// Queueing primitives
	genCh   chan struct{} // size 1: single in-flight generation
	queueCh chan struct{} // buffered: queue slots
	// Adapter shaping requests for this endpoint.
	adapter *infer.Adapter
}
