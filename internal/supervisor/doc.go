// Package supervisor owns the lifecycle of the managed service processes.
// It is structured into small files by concern:
//
//   - supervisor.go: Supervisor type, Start/StartMany activation path.
//   - stop.go: Stop/StopMany, including the port-based recovery path.
//   - handle.go: Handle and the on-disk handle Store (scratch dir).
//   - proc.go: pid liveness, termination, port-to-pid reverse lookup.
//   - env.go: per-service runtime layout and library-path fallback chain.
//   - errors.go: typed error values and IsXxx helpers.
//
// The supervisor is deliberately synchronous and single-threaded: batch
// activation walks the resolved name list in registry order, one spawn at a
// time, because parallel large-model loads are exactly the VRAM contention
// the ordering exists to avoid. Spawned services are not supervised further;
// readiness is the health prober's concern and crash recovery is the
// operator's.
package supervisor
