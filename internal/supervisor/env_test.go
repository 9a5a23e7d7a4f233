package supervisor

import (
	"os"
	"path/filepath"
	"testing"
)

func mkVenvLib(t *testing.T, root, name string) string {
	t.Helper()
	lib := filepath.Join(root, name, ".venv", "lib")
	if err := os.MkdirAll(lib, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", lib, err)
	}
	return lib
}

func TestEnvForDefaults(t *testing.T) {
	root := t.TempDir()
	l := Layout{AppRoot: root}
	env := l.EnvFor("tts")
	if env.Python != filepath.Join(root, "tts", ".venv", "bin", "python") {
		t.Fatalf("unexpected python: %s", env.Python)
	}
	if env.Entry != filepath.Join(root, "tts", "server.py") {
		t.Fatalf("unexpected entry: %s", env.Entry)
	}
	if env.Dir != filepath.Join(root, "tts") {
		t.Fatalf("unexpected dir: %s", env.Dir)
	}
	// no venv lib dir on disk, no library path
	if len(env.LibraryPath) != 0 {
		t.Fatalf("unexpected library path: %v", env.LibraryPath)
	}
}

func TestEnvForPythonOverride(t *testing.T) {
	l := Layout{AppRoot: "/srv", PythonBin: map[string]string{"stt": "/opt/py/bin/python"}}
	if got := l.EnvFor("stt").Python; got != "/opt/py/bin/python" {
		t.Fatalf("override not applied: %s", got)
	}
}

func TestEnvForDonorFallbackChain(t *testing.T) {
	root := t.TempDir()
	own := mkVenvLib(t, root, "tts")
	donor := mkVenvLib(t, root, "stt")
	l := Layout{AppRoot: root, LibDonors: map[string]string{"tts": "stt"}}
	env := l.EnvFor("tts")
	if len(env.LibraryPath) != 2 {
		t.Fatalf("expected own+donor lib path, got %v", env.LibraryPath)
	}
	if env.LibraryPath[0] != own || env.LibraryPath[1] != donor {
		t.Fatalf("fallback chain out of order: %v", env.LibraryPath)
	}
}

func TestEnvForDonorWithoutLibDirIsSkipped(t *testing.T) {
	root := t.TempDir()
	l := Layout{AppRoot: root, LibDonors: map[string]string{"tts": "stt"}}
	if got := l.EnvFor("tts").LibraryPath; len(got) != 0 {
		t.Fatalf("expected empty library path, got %v", got)
	}
}
