// Package status joins supervisor state, health probes, and optional GPU
// telemetry into the single tabular view the operator sees. It performs no
// mutation.
package status

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"stackctl/internal/config"
	"stackctl/internal/gpu"
	"stackctl/internal/health"
	"stackctl/internal/registry"
	"stackctl/internal/supervisor"
	"stackctl/pkg/types"
)

// Prober is the probe capability the reporter consumes.
type Prober interface {
	Probe(ctx context.Context, name registry.Name) health.Snapshot
}

// Reporter aggregates per-service state.
type Reporter struct {
	store  *supervisor.Store
	prober Prober

	// GPU supplies the aggregate telemetry snapshot. Swappable in tests;
	// defaults to the nvidia-smi reader.
	GPU func(ctx context.Context) (types.GPUTelemetry, bool)
}

// New constructs a Reporter over the shared handle store.
func New(store *supervisor.Store, prober Prober) *Reporter {
	return &Reporter{store: store, prober: prober, GPU: gpu.Snapshot}
}

// Collect builds a fresh StatusResponse: one row per registered service in
// registry order, each joined with a live probe and its activation
// membership. GPU telemetry is attached best-effort and omitted entirely
// when unavailable.
func (r *Reporter) Collect(ctx context.Context, act config.Activation) types.StatusResponse {
	var resp types.StatusResponse
	for _, name := range registry.AllNames() {
		desc, _ := registry.Lookup(name)
		snap := r.prober.Probe(ctx, name)

		row := types.ServiceStatus{
			Service:      string(name),
			Port:         desc.Port,
			Tier:         string(desc.Tier),
			ProcessState: string(snap.Process),
			HTTPState:    string(snap.HTTP),
			Enabled:      act.Contains(name),
			Detail:       snap.Detail,
		}
		if h, tracked, err := r.store.Read(name); err == nil && tracked {
			row.PID = h.PID
			row.LogPath = h.LogPath
		}
		resp.Services = append(resp.Services, row)
	}
	if tel, ok := r.GPU(ctx); ok {
		resp.GPU = &tel
	}
	return resp
}

// Render writes the status view as an aligned table, with a GPU footer when
// telemetry was available.
func Render(w io.Writer, resp types.StatusResponse) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SERVICE\tPORT\tTIER\tPID\tPROCESS\tHTTP\tENABLED\tDETAIL")
	for _, s := range resp.Services {
		pid := "-"
		if s.PID > 0 {
			pid = fmt.Sprintf("%d", s.PID)
		}
		enabled := "no"
		if s.Enabled {
			enabled = "yes"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Service, s.Port, s.Tier, pid, s.ProcessState, s.HTTPState, enabled, s.Detail)
	}
	tw.Flush()
	if resp.GPU != nil {
		fmt.Fprintf(w, "\ngpu: %d/%d MB used, %d%% util\n",
			resp.GPU.MemoryUsedMB, resp.GPU.MemoryTotalMB, resp.GPU.UtilizationPct)
	}
}
