// Package types holds the report shapes shared between the CLI renderers
// and the read-only operator HTTP surface.
package types

// ServiceStatus is one row of the aggregated status view.
type ServiceStatus struct {
	// Registered service name.
	// example: tts
	Service string `json:"service"`
	// Fixed TCP port from the registry.
	// example: 8103
	Port int `json:"port"`
	// Resource tier (cpu, light-gpu, heavy-gpu).
	// example: light-gpu
	Tier string `json:"tier"`
	// Tracked process id; 0 when untracked.
	// example: 12345
	PID int `json:"pid,omitempty"`
	// Handle-derived process state (running, dead, untracked).
	// example: running
	ProcessState string `json:"process_state"`
	// Probe-derived endpoint state (up, loading, down).
	// example: up
	HTTPState string `json:"http_state"`
	// Whether the name is a member of the resolved activation set.
	// example: true
	Enabled bool `json:"enabled"`
	// Raw diagnostic payload retained by the probe, if any.
	Detail string `json:"detail,omitempty"`
	// Per-service log sink path.
	LogPath string `json:"log_path,omitempty"`
}

// GPUTelemetry is a system-wide GPU snapshot. The telemetry source reports
// only aggregate state, so there is no per-service attribution.
type GPUTelemetry struct {
	// Used GPU memory in MB.
	// example: 5632
	MemoryUsedMB int `json:"memory_used_mb"`
	// Total GPU memory in MB.
	// example: 24576
	MemoryTotalMB int `json:"memory_total_mb"`
	// GPU utilization percent.
	// example: 27
	UtilizationPct int `json:"utilization_pct"`
}

// StatusResponse aggregates supervisor, prober, and telemetry state into
// one view. GPU is omitted entirely when introspection is unavailable.
type StatusResponse struct {
	Services []ServiceStatus `json:"services"`
	GPU      *GPUTelemetry   `json:"gpu,omitempty"`
}

// SmokeResult is the outcome of one smoke-test submission.
type SmokeResult struct {
	Service string `json:"service"`
	// Outcome is one of: pass, fail, skipped.
	Outcome string `json:"outcome"`
	Detail  string `json:"detail,omitempty"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: method not allowed
	Error string `json:"error"`
	// HTTP status code.
	// example: 405
	Code int `json:"code"`
}
