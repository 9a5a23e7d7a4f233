package supervisor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"stackctl/internal/common/fsutil"
	"stackctl/internal/registry"
)

// Outcome classifies the per-name result of a start or stop call.
type Outcome string

const (
	OutcomeStarted        Outcome = "started"
	OutcomeAlreadyRunning Outcome = "already running"
	OutcomeStopped        Outcome = "stopped"
	OutcomeNotRunning     Outcome = "not running"
	OutcomeUnknown        Outcome = "unknown service"
	OutcomeFailed         Outcome = "failed"
)

// Result is the per-name outcome of one lifecycle operation. Err is set only
// for OutcomeUnknown and OutcomeFailed.
type Result struct {
	Name    registry.Name
	Outcome Outcome
	PID     int
	Err     error
}

// Supervisor spawns and tears down service processes and owns their handle
// bookkeeping.
type Supervisor struct {
	layout Layout
	store  *Store
	log    zerolog.Logger
}

// New constructs a Supervisor.
func New(layout Layout, store *Store, log zerolog.Logger) *Supervisor {
	return &Supervisor{layout: layout, store: store, log: log}
}

// Store exposes the handle store, shared with the health prober and the
// status reporter.
func (s *Supervisor) Store() *Store { return s.store }

// Start brings up one service. It is idempotent: a tracked live process
// makes it a no-op reporting "already running", never a second process or a
// port-bind error. Start never waits for the service to become healthy;
// readiness is the prober's concern.
func (s *Supervisor) Start(name registry.Name) Result {
	desc, ok := registry.Lookup(name)
	if !ok {
		return Result{Name: name, Outcome: OutcomeUnknown, Err: ErrUnknownService(string(name))}
	}

	h, tracked, err := s.store.Read(name)
	if err != nil {
		// A corrupt handle file is treated the same as an absent one;
		// the stale file is overwritten on a successful spawn.
		s.log.Warn().Str("service", string(name)).Err(err).Msg("unreadable handle, treating as untracked")
		tracked = false
	}
	if tracked && h.Alive() {
		return Result{Name: name, Outcome: OutcomeAlreadyRunning, PID: h.PID}
	}

	env := s.layout.EnvFor(name)
	if !fsutil.PathExists(env.Python) {
		return Result{Name: name, Outcome: OutcomeFailed, Err: ErrPrerequisiteMissing(string(name), env.Python)}
	}
	if !fsutil.PathExists(env.Entry) {
		return Result{Name: name, Outcome: OutcomeFailed, Err: ErrPrerequisiteMissing(string(name), env.Entry)}
	}

	if err := fsutil.EnsureDir(s.store.Dir()); err != nil {
		return Result{Name: name, Outcome: OutcomeFailed, Err: err}
	}
	logPath := s.store.LogPath(name)
	sink, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return Result{Name: name, Outcome: OutcomeFailed, Err: fmt.Errorf("log sink: %w", err)}
	}
	defer sink.Close()

	cmd := exec.Command(env.Python, env.Entry)
	cmd.Dir = env.Dir
	cmd.Stdout = sink
	cmd.Stderr = sink
	cmd.Env = os.Environ()
	if len(env.LibraryPath) > 0 {
		cmd.Env = append(cmd.Env, "LD_LIBRARY_PATH="+strings.Join(env.LibraryPath, ":"))
	}
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return Result{Name: name, Outcome: OutcomeFailed, Err: fmt.Errorf("spawn %s: %w", name, err)}
	}
	pid := cmd.Process.Pid
	// Reap the child if it exits while this process is still around
	// (serve mode); once we exit, init adopts it.
	go func() { _ = cmd.Wait() }()

	h = Handle{
		Service:   name,
		PID:       pid,
		Port:      desc.Port,
		LogPath:   logPath,
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	if err := s.store.Write(h); err != nil {
		// The process is up but untracked; stop will still find it via
		// the port lookup fallback.
		s.log.Error().Str("service", string(name)).Int("pid", pid).Err(err).Msg("handle write failed")
		return Result{Name: name, Outcome: OutcomeFailed, PID: pid, Err: err}
	}

	s.log.Info().
		Str("service", string(name)).
		Int("pid", pid).
		Int("port", desc.Port).
		Str("tier", string(desc.Tier)).
		Str("log", logPath).
		Msg("started")
	return Result{Name: name, Outcome: OutcomeStarted, PID: pid}
}

// StartMany activates names sequentially in startup-weight order, one spawn
// at a time, continuing past per-name failures. Unknown names stay in the
// result map as diagnostics. The returned slice preserves attempt order.
func (s *Supervisor) StartMany(names []registry.Name) []Result {
	ordered := make([]registry.Name, len(names))
	copy(ordered, names)
	registry.SortByWeight(ordered)

	results := make([]Result, 0, len(ordered))
	for _, n := range ordered {
		results = append(results, s.Start(n))
	}
	return results
}
