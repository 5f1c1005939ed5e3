package manager

import "time"

// Unload drains an endpoint instance and removes it. The instance is marked
// draining first so admission rejects new work, then Unload waits up to
// drainTimeout for the queue and the in-flight slot to empty before removing
// the entry and releasing its memory accounting.
func (m *Manager) Unload(endpointID string) error {
	if endpointID == "" {
		return ErrEndpointNotFound("(unspecified)")
	}
	m.mu.Lock()
	inst := m.instances[endpointID]
	if inst == nil {
		m.mu.Unlock()
		return ErrEndpointNotFound(endpointID)
	}
	inst.State = StateDraining
	m.mu.Unlock()
	m.publisher.Publish(Event{Name: "unload_start", EndpointID: endpointID, Fields: map[string]any{}})

	m.waitDrained(inst, endpointID)

	m.mu.Lock()
	if cur := m.instances[endpointID]; cur != nil {
		m.usedEstMB -= cur.EstMemMB
		if m.usedEstMB < 0 {
			m.usedEstMB = 0
		}
	}
	delete(m.instances, endpointID)
	if m.curID == endpointID {
		m.curID = ""
	}
	m.mu.Unlock()

	m.publisher.Publish(Event{Name: "unload_done", EndpointID: endpointID, Fields: map[string]any{}})
	return nil
}

// waitDrained polls until the instance has no queued or in-flight work, or
// the drain timeout passes.
func (m *Manager) waitDrained(inst *Instance, endpointID string) {
	deadline := time.Now().Add(m.drainTimeout)
	for {
		m.mu.RLock()
		qlen := len(inst.queueCh)
		inflight := len(inst.genCh)
		m.mu.RUnlock()
		if inflight == 0 && qlen == 0 {
			return
		}
		if time.Now().After(deadline) {
			m.publisher.Publish(Event{Name: "unload_timeout", EndpointID: endpointID, Fields: map[string]any{"inflight": inflight, "queue": qlen}})
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}
