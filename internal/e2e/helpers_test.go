package e2e

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"stackctl/internal/registry"
	"stackctl/internal/supervisor"
)

// createFakeStack lays out <root>/<name>/.venv/bin/python (a shell symlink)
// and a sleeping server.py per service, so the supervisor spawns real but
// harmless processes.
func createFakeStack(t *testing.T, names ...registry.Name) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake service harness requires a unix shell")
	}
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skipf("no sh available: %v", err)
	}
	root := t.TempDir()
	for _, name := range names {
		bin := filepath.Join(root, string(name), ".venv", "bin")
		if err := os.MkdirAll(bin, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", bin, err)
		}
		if err := os.Symlink(sh, filepath.Join(bin, "python")); err != nil {
			t.Fatalf("symlink: %v", err)
		}
		if err := os.WriteFile(filepath.Join(root, string(name), "server.py"), []byte("sleep 60\n"), 0o644); err != nil {
			t.Fatalf("write server.py: %v", err)
		}
	}
	return root
}

// reapScratch kills anything still tracked under the scratch dir.
func reapScratch(t *testing.T, scratch string) {
	t.Helper()
	store := supervisor.NewStore(scratch)
	for _, name := range registry.AllNames() {
		if h, ok, _ := store.Read(name); ok && h.Alive() {
			if p, err := os.FindProcess(h.PID); err == nil {
				_ = p.Kill()
			}
		}
	}
}

func waitPidGone(t *testing.T, pid int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if !supervisor.PidAlive(pid) {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("pid %d still alive after stop", pid)
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}
