package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml",
		"enabled_services: [docutils, tts]\napp_root: /srv/stack\nscratch_dir: /tmp/stack\nprobe_timeout_ms: 1500\nlib_donors:\n  tts: stt\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.EnabledServices) != 2 || cfg.EnabledServices[0] != "docutils" {
		t.Fatalf("unexpected enabled_services: %v", cfg.EnabledServices)
	}
	if cfg.AppRoot != "/srv/stack" || cfg.ScratchDir != "/tmp/stack" || cfg.ProbeTimeoutMS != 1500 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.LibDonors["tts"] != "stt" {
		t.Fatalf("unexpected lib_donors: %v", cfg.LibDonors)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json",
		`{"enabled_services":["findata"],"app_root":"/a","scratch_dir":"/s","probe_timeout_ms":900}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.EnabledServices) != 1 || cfg.EnabledServices[0] != "findata" {
		t.Fatalf("unexpected enabled_services: %v", cfg.EnabledServices)
	}
	if cfg.AppRoot != "/a" || cfg.ScratchDir != "/s" || cfg.ProbeTimeoutMS != 900 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml",
		"enabled_services=[\"vision\",\"imagegen\"]\napp_root=\"/x\"\n\n[python_bin]\nvision=\"/opt/py/bin/python\"\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.EnabledServices) != 2 || cfg.AppRoot != "/x" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.PythonBin["vision"] != "/opt/py/bin/python" {
		t.Fatalf("unexpected python_bin: %v", cfg.PythonBin)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	if _, err := Load("/definitely/not/here.yaml"); err == nil {
		t.Fatalf("expected error on missing file")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}
