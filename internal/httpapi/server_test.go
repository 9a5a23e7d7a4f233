package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"stackctl/pkg/types"
)

// fakeService returns a canned status view.
type fakeService struct {
	resp types.StatusResponse
}

func (f fakeService) Status(ctx context.Context) types.StatusResponse { return f.resp }

func testMux() http.Handler {
	return NewMux(fakeService{resp: types.StatusResponse{
		Services: []types.ServiceStatus{
			{Service: "tts", Port: 8103, Tier: "light-gpu", PID: 4242, ProcessState: "running", HTTPState: "up", Enabled: true},
		},
		GPU: &types.GPUTelemetry{MemoryUsedMB: 100, MemoryTotalMB: 24576, UtilizationPct: 3},
	}})
}

func TestStatusEndpoint(t *testing.T) {
	srv := httptest.NewServer(testMux())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content type = %q", ct)
	}
	var body types.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Services) != 1 || body.Services[0].Service != "tts" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body.GPU == nil || body.GPU.MemoryTotalMB != 24576 {
		t.Fatalf("gpu section missing: %+v", body.GPU)
	}
}

func TestHealthzEndpoint(t *testing.T) {
	srv := httptest.NewServer(testMux())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(b) != "ok" {
		t.Fatalf("healthz = %d %q", resp.StatusCode, b)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := httptest.NewServer(testMux())
	defer srv.Close()

	// drive one request through the middleware first
	if _, err := http.Get(srv.URL + "/status"); err != nil {
		t.Fatalf("get status: %v", err)
	}
	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(b), "stackctl_http_requests_total") {
		t.Fatalf("request counter not exported")
	}
}

func TestRequestLoggerBranch(t *testing.T) {
	// Install a structured logger to exercise the zlog != nil path.
	SetLogger(zerolog.New(io.Discard))
	defer func() { zlog = nil }()

	srv := httptest.NewServer(testMux())
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	srv := httptest.NewServer(testMux())
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
