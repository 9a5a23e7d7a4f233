// Package health classifies the liveness of managed services. A probe is a
// pure read: it never retries, never mutates handle state, and a probe that
// exceeds its time bound is classified as down, never surfaced as an error.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"stackctl/internal/registry"
	"stackctl/internal/supervisor"
)

// ProcessState is the handle-derived view of a service process.
type ProcessState string

const (
	ProcessRunning   ProcessState = "running"
	ProcessDead      ProcessState = "dead"
	ProcessUntracked ProcessState = "untracked"
)

// HTTPState is the probe-derived view of the service's health endpoint.
type HTTPState string

const (
	HTTPUp      HTTPState = "up"
	HTTPLoading HTTPState = "loading"
	HTTPDown    HTTPState = "down"
)

// Snapshot is the ephemeral result of one probe, recomputed per request and
// never persisted.
type Snapshot struct {
	Service registry.Name
	Process ProcessState
	HTTP    HTTPState
	// Detail keeps the raw response body when classification needed it
	// (unexpected status token, malformed body), empty otherwise.
	Detail string
}

// HandleReader is the slice of the supervisor store the prober needs.
type HandleReader interface {
	Read(name registry.Name) (supervisor.Handle, bool, error)
}

// DefaultTimeout bounds a probe when the caller does not configure one.
const DefaultTimeout = 2 * time.Second

// Prober issues bounded-time health checks against the managed services.
type Prober struct {
	handles HandleReader
	client  *http.Client
	timeout time.Duration

	// Endpoint maps a descriptor port to the health URL. Overridable so
	// tests can point probes at an httptest server.
	Endpoint func(port int) string
}

// New constructs a Prober. timeout <= 0 falls back to DefaultTimeout.
func New(handles HandleReader, timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	tr := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:    16,
		IdleConnTimeout: 30 * time.Second,
	}
	// Timeout stays 0 on the client: every probe carries a context deadline.
	return &Prober{
		handles: handles,
		client:  &http.Client{Transport: tr},
		timeout: timeout,
		Endpoint: func(port int) string {
			return fmt.Sprintf("http://127.0.0.1:%d/health", port)
		},
	}
}

// healthBody is the uniform health contract every managed service exposes.
type healthBody struct {
	Status string `json:"status"`
}

// Probe classifies one service. Unknown names come back untracked/down with
// a diagnostic detail rather than an error.
func (p *Prober) Probe(ctx context.Context, name registry.Name) Snapshot {
	snap := Snapshot{Service: name, Process: ProcessUntracked, HTTP: HTTPDown}

	desc, ok := registry.Lookup(name)
	if !ok {
		snap.Detail = "unknown service"
		return snap
	}

	if h, tracked, err := p.handles.Read(name); err == nil && tracked {
		if h.Alive() {
			snap.Process = ProcessRunning
		} else {
			snap.Process = ProcessDead
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Endpoint(desc.Port), nil)
	if err != nil {
		return snap
	}
	resp, err := p.client.Do(req)
	if err != nil {
		// refused, unreachable, or past the time bound: all down
		return snap
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var hb healthBody
	if err := json.Unmarshal(body, &hb); err != nil || resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snap.Detail = strings.TrimSpace(string(body))
		return snap
	}
	switch hb.Status {
	case "ok":
		snap.HTTP = HTTPUp
	case "loading":
		snap.HTTP = HTTPLoading
	default:
		snap.Detail = strings.TrimSpace(string(body))
	}
	return snap
}
