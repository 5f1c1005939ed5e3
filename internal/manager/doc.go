// Package manager provides lifecycle, admission, and generation coordination
// for inference endpoint instances. It is structured into small files by
// concern:
//
//   - manager.go: core Manager type, constructor, simple getters.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: internal state types (State, Instance, Snapshot).
//   - errors.go: error types and helpers (IsTooBusy, IsEndpointNotFound).
//   - helpers.go: small utilities (endpoint lookup, memory estimation).
//   - admission.go: per-instance queueing and generation admission.
//   - ensure.go: EnsureInstance lifecycle and loading.
//   - evict.go: eviction logic to fit within the memory budget.
//   - generate.go: generation API entry point and NDJSON streaming.
//   - events.go: lifecycle event types and publishers.
//   - metrics.go: Prometheus collectors for generation.
//   - unload.go: graceful drain and removal of instances.
//   - status_report.go: Status/Snapshot reporting helpers.
//   - ops.go: operational helpers like Preload.
//
// External packages should treat this package as the orchestration layer and
// use public methods only (e.g., NewWithConfig, Ready, ListEndpoints, Status,
// Generate). Internal types are subject to change.
package manager
