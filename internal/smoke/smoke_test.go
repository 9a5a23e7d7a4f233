package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"stackctl/internal/health"
	"stackctl/internal/registry"
	"stackctl/pkg/types"
)

type stubProber map[registry.Name]health.HTTPState

func (s stubProber) Probe(_ context.Context, name registry.Name) health.Snapshot {
	st, ok := s[name]
	if !ok {
		st = health.HTTPDown
	}
	return health.Snapshot{Service: name, HTTP: st}
}

func runnerFor(t *testing.T, prober stubProber, handler http.Handler) *Runner {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	r := New(prober, 5*time.Second, zerolog.New(io.Discard))
	r.BaseURL = func(port int) string { return srv.URL }
	return r
}

// fakeStack emulates enough of each service endpoint for shape checks.
func fakeStack() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/parse", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		quoted, _ := json.Marshal(string(b))
		w.Write([]byte(`{"format":"text","full_text":` + string(quoted) + `}`))
	})
	mux.HandleFunc("/quote", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"AAPL","price":123.45}`))
	})
	mux.HandleFunc("/speak", func(w http.ResponseWriter, r *http.Request) {
		w.Write(syntheticWAV(24000, 100))
	})
	mux.HandleFunc("/embed", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3]}],"dimensions":3}`))
	})
	mux.HandleFunc("/transcribe", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"","language":"en"}`))
	})
	mux.HandleFunc("/describe", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"a black square"}`))
	})
	mux.HandleFunc("/generate", func(w http.ResponseWriter, r *http.Request) {
		w.Write(syntheticPNG())
	})
	return mux
}

func allUp() stubProber {
	up := stubProber{}
	for _, n := range registry.AllNames() {
		up[n] = health.HTTPUp
	}
	return up
}

func TestRunAllServicesPass(t *testing.T) {
	r := runnerFor(t, allUp(), fakeStack())
	results := r.Run(context.Background(), registry.AllNames())
	if len(results) != len(registry.AllNames()) {
		t.Fatalf("expected %d results, got %d", len(registry.AllNames()), len(results))
	}
	for _, res := range results {
		if res.Outcome != OutcomePass {
			t.Fatalf("%s: %s (%s)", res.Service, res.Outcome, res.Detail)
		}
	}
	if Failed(results) {
		t.Fatalf("Failed() true for passing run")
	}
}

func TestRunSkipsServicesNotUp(t *testing.T) {
	prober := allUp()
	prober["vision"] = health.HTTPLoading
	prober["imagegen"] = health.HTTPDown
	r := runnerFor(t, prober, fakeStack())

	results := r.Run(context.Background(), registry.AllNames())
	byName := map[string]types.SmokeResult{}
	for _, res := range results {
		byName[res.Service] = res
	}
	if byName["vision"].Outcome != OutcomeSkipped || byName["imagegen"].Outcome != OutcomeSkipped {
		t.Fatalf("loading/down services not skipped: %+v", results)
	}
	if Failed(results) {
		t.Fatalf("skips must not gate")
	}
}

func TestRunFailsOnBadShape(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/speak", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not audio"))
	})
	r := runnerFor(t, stubProber{"tts": health.HTTPUp}, mux)

	results := r.Run(context.Background(), []registry.Name{"tts"})
	if results[0].Outcome != OutcomeFail {
		t.Fatalf("outcome = %s, want %s", results[0].Outcome, OutcomeFail)
	}
	if !Failed(results) {
		t.Fatalf("Failed() false for failing run")
	}
}

func TestRunFailsOnHTTPError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/embed", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model still loading", http.StatusServiceUnavailable)
	})
	r := runnerFor(t, stubProber{"embeddings": health.HTTPUp}, mux)

	results := r.Run(context.Background(), []registry.Name{"embeddings"})
	if results[0].Outcome != OutcomeFail {
		t.Fatalf("outcome = %s, want %s", results[0].Outcome, OutcomeFail)
	}
}

func TestRunUnknownNameFails(t *testing.T) {
	r := runnerFor(t, stubProber{}, http.NewServeMux())
	results := r.Run(context.Background(), []registry.Name{"nonesuch"})
	if results[0].Outcome != OutcomeFail || results[0].Detail != "unknown service" {
		t.Fatalf("unexpected result: %+v", results[0])
	}
}

func TestRunOrdersByWeight(t *testing.T) {
	r := runnerFor(t, stubProber{}, http.NewServeMux())
	results := r.Run(context.Background(), []registry.Name{"imagegen", "docutils"})
	if results[0].Service != "docutils" || results[1].Service != "imagegen" {
		t.Fatalf("unexpected order: %+v", results)
	}
}

func TestSyntheticWAVHeader(t *testing.T) {
	wav := syntheticWAV(16000, 4000)
	if string(wav[:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatalf("bad wav header: % x", wav[:12])
	}
	if len(wav) != 44+4000*2 {
		t.Fatalf("unexpected wav size: %d", len(wav))
	}
}

func TestSyntheticPNGDecodes(t *testing.T) {
	img, err := png.Decode(bytes.NewReader(syntheticPNG()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 1 || b.Dy() != 1 {
		t.Fatalf("unexpected bounds: %v", b)
	}
}
