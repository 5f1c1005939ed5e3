package manager

import (
	"sync"
	"sync/atomic"
	"time"

	"neurod/internal/tokenizer"
	"neurod/pkg/types"
)

type Manager struct {
	mu              sync.RWMutex
	state           State
	curID           string
	err             string
	registry        []types.Endpoint
	budgetMB        int
	marginMB        int
	defaultEndpoint string
	instances       map[string]*Instance
	usedEstMB       int

	// Queue config
	maxQueueDepth int
	maxWait       time.Duration

	// Per-step endpoint call bound
	stepTimeout time.Duration
	// Drain bound for Unload
	drainTimeout time.Duration

	opener    EndpointOpener
	publisher EventPublisher

	tok tokenizer.Tokenizer

	startTime      time.Time
	loadsTotal     atomic.Uint64
	evictionsTotal atomic.Uint64
	opSeq          atomic.Uint64
}

func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state == StateError {
		return false
	}
	// Ready if any instance is ready
	for _, inst := range m.instances {
		if inst.State == StateReady {
			return true
		}
	}
	return m.state == StateReady && m.curID != ""
}

func (m *Manager) ListEndpoints() []types.Endpoint {
	m.mu.RLock()
	defer m.mu.RUnlock()
	// return a shallow copy to avoid external mutation
	out := make([]types.Endpoint, len(m.registry))
	copy(out, m.registry)
	return out
}
