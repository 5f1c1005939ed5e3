package manager

import (
	"context"
	"testing"
	"time"
)

func TestEnsureInstanceReady(t *testing.T) {
	m := newTestManager(ManagerConfig{})
	if m.Ready() {
		t.Fatalf("manager must not report ready before any ensure")
	}
	if err := m.EnsureInstance(context.Background(), "synthetic"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if !m.Ready() {
		t.Fatalf("manager must be ready after ensure")
	}
	st := m.Status()
	if len(st.Instances) != 1 || st.Instances[0].EndpointID != "synthetic" {
		t.Fatalf("unexpected instances: %+v", st.Instances)
	}
	if st.Instances[0].State != string(StateReady) {
		t.Fatalf("instance not ready: %s", st.Instances[0].State)
	}
	if st.LoadsTotal != 1 {
		t.Fatalf("expected 1 load, got %d", st.LoadsTotal)
	}
}

func TestEnsureInstanceUnknownEndpoint(t *testing.T) {
	m := newTestManager(ManagerConfig{})
	err := m.EnsureInstance(context.Background(), "nope")
	if !IsEndpointNotFound(err) {
		t.Fatalf("expected endpoint-not-found, got %v", err)
	}
}

func TestEnsureInstanceEmptyIDWithoutDefault(t *testing.T) {
	m := NewWithConfig(ManagerConfig{Registry: syntheticRegistry()})
	if err := m.EnsureInstance(context.Background(), ""); err != nil {
		t.Fatalf("empty id without default must be a no-op, got %v", err)
	}
	if len(m.Status().Instances) != 0 {
		t.Fatalf("no instance should have been created")
	}
}

func TestEnsureInstanceIdempotent(t *testing.T) {
	m := newTestManager(ManagerConfig{})
	ctx := context.Background()
	if err := m.EnsureInstance(ctx, "synthetic"); err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	if err := m.EnsureInstance(ctx, "synthetic"); err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	st := m.Status()
	if len(st.Instances) != 1 {
		t.Fatalf("expected a single instance, got %d", len(st.Instances))
	}
	if st.LoadsTotal != 1 {
		t.Fatalf("ready instance must not be reloaded, loads=%d", st.LoadsTotal)
	}
}

func TestEvictionFreesBudget(t *testing.T) {
	// Each synthetic instance is estimated at 1MB; a 1MB budget forces the
	// LRU instance out when a second one is ensured.
	m := newTestManager(ManagerConfig{BudgetMB: 1})
	ctx := context.Background()
	if err := m.EnsureInstance(ctx, "synthetic"); err != nil {
		t.Fatalf("ensure first: %v", err)
	}
	if err := m.EnsureInstance(ctx, "synthetic-b"); err != nil {
		t.Fatalf("ensure second: %v", err)
	}
	st := m.Status()
	if len(st.Instances) != 1 || st.Instances[0].EndpointID != "synthetic-b" {
		t.Fatalf("expected only the second instance, got %+v", st.Instances)
	}
	if st.EvictionsTotal != 1 {
		t.Fatalf("expected 1 eviction, got %d", st.EvictionsTotal)
	}
}

func TestUnloadRemovesInstance(t *testing.T) {
	m := newTestManager(ManagerConfig{})
	if err := m.EnsureInstance(context.Background(), "synthetic"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := m.Unload("synthetic"); err != nil {
		t.Fatalf("unload: %v", err)
	}
	if len(m.Status().Instances) != 0 {
		t.Fatalf("instance should be gone after unload")
	}
	if m.Status().UsedMB != 0 {
		t.Fatalf("memory accounting not released: %d", m.Status().UsedMB)
	}
}

func TestUnloadUnknownEndpoint(t *testing.T) {
	m := newTestManager(ManagerConfig{})
	if err := m.Unload("nope"); !IsEndpointNotFound(err) {
		t.Fatalf("expected endpoint-not-found, got %v", err)
	}
	if err := m.Unload(""); !IsEndpointNotFound(err) {
		t.Fatalf("expected endpoint-not-found for empty id, got %v", err)
	}
}

func TestPreloadEventuallyReady(t *testing.T) {
	m := newTestManager(ManagerConfig{})
	op, err := m.Preload(context.Background(), "synthetic")
	if err != nil {
		t.Fatalf("preload: %v", err)
	}
	if op == "" {
		t.Fatalf("expected an operation id")
	}
	deadline := time.Now().Add(2 * time.Second)
	for !m.Ready() {
		if time.Now().After(deadline) {
			t.Fatalf("manager never became ready")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestListEndpointsCopies(t *testing.T) {
	m := newTestManager(ManagerConfig{})
	eps := m.ListEndpoints()
	if len(eps) != 2 {
		t.Fatalf("expected 2 endpoints, got %d", len(eps))
	}
	eps[0].ID = "mutated"
	if m.ListEndpoints()[0].ID == "mutated" {
		t.Fatalf("registry must not be externally mutable")
	}
}

func TestEnsurePublishesEvents(t *testing.T) {
	pub := NewMemoryPublisher()
	m := newTestManager(ManagerConfig{Publisher: pub})
	if err := m.EnsureInstance(context.Background(), "synthetic"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	var names []string
	for _, e := range pub.Events() {
		names = append(names, e.Name)
	}
	want := map[string]bool{"ensure_start": false, "ensure_ready": false}
	for _, n := range names {
		if _, ok := want[n]; ok {
			want[n] = true
		}
	}
	for n, seen := range want {
		if !seen {
			t.Fatalf("missing event %q in %v", n, names)
		}
	}
}
