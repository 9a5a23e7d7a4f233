package supervisor

import (
	"path/filepath"

	"stackctl/internal/common/fsutil"
	"stackctl/internal/registry"
)

// Layout describes where service runtimes live on disk. Each service owns a
// subdirectory of AppRoot with its own venv and a server.py entry point.
type Layout struct {
	AppRoot string
	// PythonBin overrides the interpreter per service; default is the
	// service's own venv python.
	PythonBin map[string]string
	// LibDonors pairs a service with the service whose venv lib directory
	// backs its library search path when its own copy of a shared native
	// dependency is missing. The pairing comes from config.
	LibDonors map[string]string
}

// RuntimeEnv is the resolved launch parameterization for one service.
// Derived from the registry and Layout at spawn time, never persisted.
type RuntimeEnv struct {
	Python string
	Entry  string
	Dir    string
	// LibraryPath holds LD_LIBRARY_PATH entries: the service's own venv
	// lib directory first, then the donor's as fallback.
	LibraryPath []string
}

func (l Layout) serviceDir(name registry.Name) string {
	return filepath.Join(l.AppRoot, string(name))
}

func (l Layout) python(name registry.Name) string {
	if p, ok := l.PythonBin[string(name)]; ok && p != "" {
		return p
	}
	return filepath.Join(l.serviceDir(name), ".venv", "bin", "python")
}

func (l Layout) venvLib(name registry.Name) string {
	return filepath.Join(l.serviceDir(name), ".venv", "lib")
}

// EnvFor builds the runtime environment spec for name.
func (l Layout) EnvFor(name registry.Name) RuntimeEnv {
	env := RuntimeEnv{
		Python: l.python(name),
		Entry:  filepath.Join(l.serviceDir(name), "server.py"),
		Dir:    l.serviceDir(name),
	}
	if own := l.venvLib(name); fsutil.PathExists(own) {
		env.LibraryPath = append(env.LibraryPath, own)
	}
	if donor, ok := l.LibDonors[string(name)]; ok && donor != "" {
		if lib := l.venvLib(registry.Name(donor)); fsutil.PathExists(lib) {
			env.LibraryPath = append(env.LibraryPath, lib)
		}
	}
	return env
}
