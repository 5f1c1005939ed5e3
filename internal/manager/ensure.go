package manager

import (
	"context"
	"log"
	"time"

	"neurod/internal/infer"
)

// EnsureInstance ensures an endpoint instance is bound and marked ready
// according to current resource budgeting and readiness state.
func (m *Manager) EnsureInstance(ctx context.Context, endpointID string) error {
	startTs := time.Now()
	if endpointID == "" {
		// If unspecified, use default if present; else no-op
		endpointID = m.defaultEndpoint
		if endpointID == "" {
			return nil
		}
	}
	log.Printf("manager event=ensure_start endpoint=%q", endpointID)
	m.publisher.Publish(Event{Name: "ensure_start", EndpointID: endpointID, Fields: map[string]any{}})

	m.mu.RLock()
	inst, ok := m.instances[endpointID]
	ready := ok && inst != nil && inst.State == StateReady
	m.mu.RUnlock()
	if ready {
		// Upgrade to write lock to safely mutate LastUsed and re-check state
		m.mu.Lock()
		if inst2, ok2 := m.instances[endpointID]; ok2 && inst2 != nil && inst2.State == StateReady {
			inst2.LastUsed = time.Now()
			m.mu.Unlock()
			return nil
		}
		m.mu.Unlock()
		// If state changed in between, continue with ensure path
	}

	// Resolve endpoint from registry
	ep, ok := m.getEndpointByID(endpointID)
	if !ok {
		log.Printf("manager event=ensure_endpoint_not_found endpoint=%q", endpointID)
		m.publisher.Publish(Event{Name: "ensure_endpoint_not_found", EndpointID: endpointID, Fields: map[string]any{}})
		return ErrEndpointNotFound(endpointID)
	}
	reqMB := m.estimateMemMB(ep)

	// Evict until it fits budget + margin, if budget configured
	if m.budgetMB > 0 {
		if err := m.evictUntilFits(reqMB); err != nil {
			log.Printf("manager event=ensure_budget_fail endpoint=%q err=%v", endpointID, err)
			m.publisher.Publish(Event{Name: "ensure_budget_fail", EndpointID: endpointID, Fields: map[string]any{"error": err.Error()}})
			return err
		}
	}

	// Bind the live endpoint before committing the instance
	live, err := m.opener(ep)
	if err != nil {
		m.mu.Lock()
		m.state = StateError
		m.err = err.Error()
		m.mu.Unlock()
		log.Printf("manager event=ensure_open_error endpoint=%q err=%v", endpointID, err)
		m.publisher.Publish(Event{Name: "ensure_open_error", EndpointID: endpointID, Fields: map[string]any{"error": err.Error()}})
		return err
	}
	adapter := infer.NewAdapter(live, m.stepTimeout)

	// Perform per-instance load/warmup state transition
	m.mu.Lock()
	m.state = StateLoading
	m.err = ""
	if m.instances == nil {
		m.instances = make(map[string]*Instance)
	}
	inst, existed := m.instances[endpointID]
	addedNow := false
	if !existed || inst == nil {
		inst = &Instance{
			ID:       endpointID,
			State:    StateLoading,
			LastUsed: time.Now(),
			EstMemMB: reqMB,
			genCh:    make(chan struct{}, 1),
			queueCh:  make(chan struct{}, m.maxQueueDepth),
		}
		m.instances[endpointID] = inst
		addedNow = true
	} else {
		inst.State = StateLoading
		inst.EstMemMB = reqMB
		inst.LastUsed = time.Now()
	}
	inst.adapter = adapter
	m.mu.Unlock()

	// Warmup sleep to preserve readiness transitions.
	select {
	case <-time.After(50 * time.Millisecond):
	case <-ctx.Done():
		m.mu.Lock()
		m.state = StateError
		m.err = ctx.Err().Error()
		m.mu.Unlock()
		return ctx.Err()
	}

	// Commit instance as ready after warmup
	m.mu.Lock()
	if addedNow {
		// Only add to used estimate when we actually added a new instance
		m.usedEstMB += reqMB
	}
	inst.State = StateReady
	inst.LastUsed = time.Now()
	m.curID = endpointID
	m.state = StateReady
	m.err = ""
	m.mu.Unlock()
	m.loadsTotal.Add(1)
	log.Printf("manager event=ensure_ready endpoint=%q dur_ms=%d", endpointID, time.Since(startTs)/time.Millisecond)
	m.publisher.Publish(Event{Name: "ensure_ready", EndpointID: endpointID, Fields: map[string]any{"dur_ms": int(time.Since(startTs) / time.Millisecond)}})
	return nil
}
