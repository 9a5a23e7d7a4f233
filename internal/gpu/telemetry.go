// Package gpu reads a best-effort aggregate GPU snapshot by shelling out to
// nvidia-smi. Hosts without the binary (or with a broken driver) simply get
// no telemetry; callers omit the section rather than erroring.
package gpu

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"stackctl/pkg/types"
)

const queryTimeoutArgs = "--query-gpu=memory.used,memory.total,utilization.gpu"

// Snapshot queries the first GPU. ok is false whenever nvidia-smi is
// missing, fails, or emits something unparseable.
func Snapshot(ctx context.Context) (types.GPUTelemetry, bool) {
	out, err := exec.CommandContext(ctx, "nvidia-smi",
		queryTimeoutArgs, "--format=csv,noheader,nounits").Output()
	if err != nil {
		return types.GPUTelemetry{}, false
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	tel, err := parseQueryLine(line)
	if err != nil {
		return types.GPUTelemetry{}, false
	}
	return tel, true
}

// parseQueryLine parses one csv,noheader,nounits row: "used, total, util".
func parseQueryLine(line string) (types.GPUTelemetry, error) {
	var tel types.GPUTelemetry
	fields := strings.Split(line, ",")
	if len(fields) != 3 {
		return tel, fmt.Errorf("expected 3 fields, got %d in %q", len(fields), line)
	}
	vals := make([]int, 3)
	for i, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return tel, fmt.Errorf("field %d of %q: %w", i, line, err)
		}
		vals[i] = n
	}
	tel.MemoryUsedMB, tel.MemoryTotalMB, tel.UtilizationPct = vals[0], vals[1], vals[2]
	return tel, nil
}
