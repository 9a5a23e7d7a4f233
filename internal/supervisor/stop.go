package supervisor

import (
	"fmt"

	"stackctl/internal/registry"
)

// Stop tears down one service. The primary path terminates the tracked pid
// and removes the handle file. When the handle is absent or stale, Stop
// falls back to the process currently listening on the descriptor's fixed
// port, recovering management even when bookkeeping was lost. Stopping an
// already-stopped service reports "not running" and is not an error.
func (s *Supervisor) Stop(name registry.Name) Result {
	desc, ok := registry.Lookup(name)
	if !ok {
		return Result{Name: name, Outcome: OutcomeUnknown, Err: ErrUnknownService(string(name))}
	}

	h, tracked, err := s.store.Read(name)
	if err != nil {
		s.log.Warn().Str("service", string(name)).Err(err).Msg("unreadable handle, falling back to port lookup")
		tracked = false
	}

	if tracked && h.Alive() {
		if err := terminatePid(h.PID); err != nil {
			return Result{Name: name, Outcome: OutcomeFailed, PID: h.PID, Err: err}
		}
		if err := s.store.Remove(name); err != nil {
			return Result{Name: name, Outcome: OutcomeFailed, PID: h.PID, Err: err}
		}
		s.log.Info().Str("service", string(name)).Int("pid", h.PID).Msg("stopped")
		return Result{Name: name, Outcome: OutcomeStopped, PID: h.PID}
	}

	// Stale or missing handle: clear the file either way, then see whether
	// something is still holding the service's port.
	if err := s.store.Remove(name); err != nil {
		return Result{Name: name, Outcome: OutcomeFailed, Err: err}
	}
	if pid, found := pidListeningOn(desc.Port); found {
		if err := terminatePid(pid); err != nil {
			return Result{Name: name, Outcome: OutcomeFailed, PID: pid,
				Err: fmt.Errorf("untracked process on port %d: %w", desc.Port, err)}
		}
		s.log.Info().Str("service", string(name)).Int("pid", pid).Int("port", desc.Port).
			Msg("stopped via port lookup")
		return Result{Name: name, Outcome: OutcomeStopped, PID: pid}
	}

	return Result{Name: name, Outcome: OutcomeNotRunning}
}

// StopMany stops names sequentially, continuing past per-name failures.
// Teardown runs in reverse startup-weight order so the heavy services go
// down first.
func (s *Supervisor) StopMany(names []registry.Name) []Result {
	ordered := make([]registry.Name, len(names))
	copy(ordered, names)
	registry.SortByWeight(ordered)
	for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
		ordered[i], ordered[j] = ordered[j], ordered[i]
	}

	results := make([]Result, 0, len(ordered))
	for _, n := range ordered {
		results = append(results, s.Stop(n))
	}
	return results
}
