// Package registry holds the static catalog of managed inference services.
// Every service the orchestrator knows about is compiled into this table;
// names arriving from config or the CLI are validated against it at the
// boundary so an unknown name becomes a typed result instead of a runtime
// string mismatch somewhere deeper.
package registry

import "sort"

// Name identifies a registered service.
type Name string

// ResourceTier classifies a service by its GPU footprint.
type ResourceTier string

const (
	TierCPUOnly  ResourceTier = "cpu"
	TierLightGPU ResourceTier = "light-gpu"
	TierHeavyGPU ResourceTier = "heavy-gpu"
)

// ServiceDescriptor is the immutable registry entry for one service.
type ServiceDescriptor struct {
	Name Name
	// Port is the fixed TCP port the service binds. Ports are unique
	// across the registry.
	Port int
	Tier ResourceTier
	// StartupWeight orders batch activation: lower starts earlier.
	// CPU-only services carry the lowest weights so a large model load
	// that exhausts VRAM fails after the cheap services are already up.
	StartupWeight int
	// Model is a human-facing hint of what the service runs.
	Model string
}

// services is the fixed stack. One entry per name, ports globally unique.
var services = map[Name]ServiceDescriptor{
	"docutils":   {Name: "docutils", Port: 8106, Tier: TierCPUOnly, StartupWeight: 10, Model: "pymupdf/python-docx"},
	"findata":    {Name: "findata", Port: 8107, Tier: TierCPUOnly, StartupWeight: 20, Model: "yfinance"},
	"tts":        {Name: "tts", Port: 8103, Tier: TierLightGPU, StartupWeight: 30, Model: "hexgrad/Kokoro-82M"},
	"embeddings": {Name: "embeddings", Port: 8105, Tier: TierLightGPU, StartupWeight: 40, Model: "nomic-ai/nomic-embed-text-v1.5"},
	"stt":        {Name: "stt", Port: 8101, Tier: TierLightGPU, StartupWeight: 50, Model: "faster-whisper"},
	"vision":     {Name: "vision", Port: 8102, Tier: TierHeavyGPU, StartupWeight: 60, Model: "Qwen/Qwen2.5-VL-7B-Instruct-AWQ"},
	"imagegen":   {Name: "imagegen", Port: 8104, Tier: TierHeavyGPU, StartupWeight: 70, Model: "stabilityai/sdxl-turbo"},
}

// Lookup returns the descriptor for name. The second return mirrors map
// access; callers surface unknown names as per-name diagnostics.
func Lookup(name Name) (ServiceDescriptor, bool) {
	d, ok := services[name]
	return d, ok
}

// Known reports whether name is registered.
func Known(name Name) bool {
	_, ok := services[name]
	return ok
}

// AllNames returns every registered name in activation order:
// ascending StartupWeight, ties broken by name for determinism.
func AllNames() []Name {
	names := make([]Name, 0, len(services))
	for n := range services {
		names = append(names, n)
	}
	sortByWeight(names)
	return names
}

// SortByWeight reorders names in place into activation order. Unknown
// names sink to the end (stable among themselves) so they stay visible
// to the supervisor's per-name diagnostics.
func SortByWeight(names []Name) {
	sortByWeight(names)
}

func sortByWeight(names []Name) {
	sort.SliceStable(names, func(i, j int) bool {
		di, iok := services[names[i]]
		dj, jok := services[names[j]]
		switch {
		case iok && !jok:
			return true
		case !iok && jok:
			return false
		case !iok && !jok:
			return false
		}
		if di.StartupWeight != dj.StartupWeight {
			return di.StartupWeight < dj.StartupWeight
		}
		return di.Name < dj.Name
	})
}
