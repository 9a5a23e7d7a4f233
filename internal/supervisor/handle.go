package supervisor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"stackctl/internal/registry"
)

// Handle is the on-disk record of a process the orchestrator believes it
// started. Its backing file is the sole source of truth for "is this
// service mine to manage": an absent file is the valid untracked state,
// never an error.
type Handle struct {
	Service   registry.Name `json:"service"`
	PID       int           `json:"pid"`
	Port      int           `json:"port"`
	LogPath   string        `json:"log_path"`
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
}

// Alive reports whether the recorded pid is a live process.
func (h Handle) Alive() bool { return PidAlive(h.PID) }

// Store reads and writes handle files under the scratch directory.
// Files are named <scratch>/<service>.json; log sinks live alongside as
// <scratch>/<service>.log.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir. The directory is created lazily
// on the first write.
func NewStore(dir string) *Store { return &Store{dir: dir} }

// Dir returns the scratch directory.
func (s *Store) Dir() string { return s.dir }

// HandlePath returns the handle file path for name.
func (s *Store) HandlePath(name registry.Name) string {
	return filepath.Join(s.dir, string(name)+".json")
}

// LogPath returns the log sink path for name.
func (s *Store) LogPath(name registry.Name) string {
	return filepath.Join(s.dir, string(name)+".log")
}

// Read loads the handle for name. ok is false when no handle file exists,
// which models the untracked state. A present but unreadable file is an
// error so callers can decide whether to fall back.
func (s *Store) Read(name registry.Name) (Handle, bool, error) {
	var h Handle
	b, err := os.ReadFile(s.HandlePath(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return h, false, nil
		}
		return h, false, fmt.Errorf("read handle %s: %w", name, err)
	}
	if err := json.Unmarshal(b, &h); err != nil {
		return h, false, fmt.Errorf("decode handle %s: %w", name, err)
	}
	return h, true, nil
}

// Write persists h so a later orchestrator invocation can rediscover the
// process it tracks.
func (s *Store) Write(h Handle) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("scratch dir: %w", err)
	}
	b, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.HandlePath(h.Service), b, 0o644)
}

// Remove deletes the handle file for name. Removing an absent handle is a
// no-op.
func (s *Store) Remove(name registry.Name) error {
	err := os.Remove(s.HandlePath(name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove handle %s: %w", name, err)
	}
	return nil
}
