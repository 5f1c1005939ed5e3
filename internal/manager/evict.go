package manager

import "time"

// evictUntilFits frees idle instances, least recently used first, until
// requiredMB fits inside budget minus margin. Instances with in-flight or
// queued work are never evicted; if only busy instances remain the loop
// gives up and lets the caller fail the budget check.
func (m *Manager) evictUntilFits(requiredMB int) error {
	deadline := time.Now().Add(time.Second)
	for {
		m.mu.Lock()
		if m.usedEstMB+requiredMB+m.marginMB <= m.budgetMB {
			m.mu.Unlock()
			return nil
		}
		victim := m.idleLRULocked()
		if victim == nil {
			m.mu.Unlock()
			return nil
		}
		delete(m.instances, victim.ID)
		m.usedEstMB -= victim.EstMemMB
		m.mu.Unlock()

		m.evictionsTotal.Add(1)
		m.publisher.Publish(Event{Name: "evict", EndpointID: victim.ID, Fields: map[string]any{"freed_mb": victim.EstMemMB}})

		if time.Now().After(deadline) {
			return nil
		}
	}
}

// idleLRULocked picks the least recently used instance with no active or
// queued work. Caller holds m.mu.
func (m *Manager) idleLRULocked() *Instance {
	var victim *Instance
	for _, inst := range m.instances {
		if len(inst.genCh) > 0 || len(inst.queueCh) > 0 {
			continue
		}
		if victim == nil || inst.LastUsed.Before(victim.LastUsed) {
			victim = inst
		}
	}
	return victim
}
