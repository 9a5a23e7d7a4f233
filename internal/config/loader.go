package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// File holds the persisted orchestrator configuration.
// Zero values mean "unspecified" and are replaced by defaults in the CLI layer.
type File struct {
	// EnabledServices declares membership only; activation order is always
	// the registry's startup-weight order.
	EnabledServices []string `json:"enabled_services" yaml:"enabled_services" toml:"enabled_services"`
	// AppRoot is the directory containing one subdirectory per service
	// (each with its own venv and server entry point).
	AppRoot string `json:"app_root" yaml:"app_root" toml:"app_root"`
	// ScratchDir holds handle files and per-service log sinks.
	ScratchDir string `json:"scratch_dir" yaml:"scratch_dir" toml:"scratch_dir"`
	// ProbeTimeoutMS bounds each health probe.
	ProbeTimeoutMS int `json:"probe_timeout_ms" yaml:"probe_timeout_ms" toml:"probe_timeout_ms"`
	// LibDonors maps a service to the service whose venv lib directory is
	// appended to its library search path when its own copy of a native
	// dependency is missing. Donor pairing is configuration, not policy.
	LibDonors map[string]string `json:"lib_donors" yaml:"lib_donors" toml:"lib_donors"`
	// PythonBin overrides the per-service interpreter path (defaults to
	// <app_root>/<name>/.venv/bin/python).
	PythonBin map[string]string `json:"python_bin" yaml:"python_bin" toml:"python_bin"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (File, error) {
	var cfg File
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
