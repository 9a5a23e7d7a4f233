// Package smoke is the end-to-end gating surface: it submits one minimal
// synthetic payload to each reachable service and shape-checks the response.
// Unlike start/stop/status, this surface is meant for scripted gating, so
// its caller turns any exercised-service failure into a nonzero exit code.
package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"stackctl/internal/health"
	"stackctl/internal/registry"
	"stackctl/pkg/types"
)

const (
	OutcomePass    = "pass"
	OutcomeFail    = "fail"
	OutcomeSkipped = "skipped"
)

// Prober is the readiness check consulted before exercising a service.
type Prober interface {
	Probe(ctx context.Context, name registry.Name) health.Snapshot
}

// DefaultTimeout bounds one smoke submission. Inference endpoints are slow
// relative to health checks, so this is deliberately generous.
const DefaultTimeout = 60 * time.Second

// Runner drives the smoke checks.
type Runner struct {
	prober  Prober
	client  *http.Client
	timeout time.Duration
	log     zerolog.Logger

	// BaseURL maps a descriptor port to the service base URL. Overridable
	// so tests can target an httptest server.
	BaseURL func(port int) string
}

// New constructs a Runner. timeout <= 0 falls back to DefaultTimeout.
func New(prober Prober, timeout time.Duration, log zerolog.Logger) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{
		prober:  prober,
		client:  &http.Client{},
		timeout: timeout,
		log:     log,
		BaseURL: func(port int) string { return fmt.Sprintf("http://127.0.0.1:%d", port) },
	}
}

// Run exercises each named service in registry order. Services that do not
// probe as up are skipped, not failed; a skip never gates.
func (r *Runner) Run(ctx context.Context, names []registry.Name) []types.SmokeResult {
	ordered := make([]registry.Name, len(names))
	copy(ordered, names)
	registry.SortByWeight(ordered)

	results := make([]types.SmokeResult, 0, len(ordered))
	for _, name := range ordered {
		results = append(results, r.runOne(ctx, name))
	}
	return results
}

// Failed reports whether any exercised service failed.
func Failed(results []types.SmokeResult) bool {
	for _, res := range results {
		if res.Outcome == OutcomeFail {
			return true
		}
	}
	return false
}

func (r *Runner) runOne(ctx context.Context, name registry.Name) types.SmokeResult {
	desc, ok := registry.Lookup(name)
	if !ok {
		return types.SmokeResult{Service: string(name), Outcome: OutcomeFail, Detail: "unknown service"}
	}
	check, ok := checks[name]
	if !ok {
		return types.SmokeResult{Service: string(name), Outcome: OutcomeSkipped, Detail: "no smoke check defined"}
	}

	snap := r.prober.Probe(ctx, name)
	if snap.HTTP != health.HTTPUp {
		return types.SmokeResult{Service: string(name), Outcome: OutcomeSkipped,
			Detail: "service not up (" + string(snap.HTTP) + ")"}
	}

	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	start := time.Now()
	if err := check(cctx, r.client, r.BaseURL(desc.Port)); err != nil {
		r.log.Error().Str("service", string(name)).Err(err).Msg("smoke check failed")
		return types.SmokeResult{Service: string(name), Outcome: OutcomeFail, Detail: err.Error()}
	}
	r.log.Info().Str("service", string(name)).Dur("took", time.Since(start)).Msg("smoke check passed")
	return types.SmokeResult{Service: string(name), Outcome: OutcomePass}
}

// checkFunc submits one synthetic payload and validates the response shape.
type checkFunc func(ctx context.Context, client *http.Client, base string) error

var checks = map[registry.Name]checkFunc{
	"docutils":   checkDocutils,
	"findata":    checkFindata,
	"tts":        checkTTS,
	"embeddings": checkEmbeddings,
	"stt":        checkSTT,
	"vision":     checkVision,
	"imagegen":   checkImagegen,
}

func checkDocutils(ctx context.Context, client *http.Client, base string) error {
	body, err := postMultipart(ctx, client, base+"/parse",
		"smoke.txt", []byte("stackctl smoke test\n"), nil)
	if err != nil {
		return err
	}
	var resp struct {
		Format   string `json:"format"`
		FullText string `json:"full_text"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("decode parse response: %w", err)
	}
	if resp.Format != "text" || !strings.Contains(resp.FullText, "smoke test") {
		return fmt.Errorf("unexpected parse result: format=%q", resp.Format)
	}
	return nil
}

func checkFindata(ctx context.Context, client *http.Client, base string) error {
	body, err := postJSON(ctx, client, base+"/quote", map[string]any{"ticker": "AAPL"})
	if err != nil {
		return err
	}
	var resp map[string]any
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("decode quote response: %w", err)
	}
	if len(resp) == 0 {
		return fmt.Errorf("empty quote response")
	}
	return nil
}

func checkTTS(ctx context.Context, client *http.Client, base string) error {
	body, err := postJSON(ctx, client, base+"/speak", map[string]any{"text": "smoke"})
	if err != nil {
		return err
	}
	if len(body) < 4 || string(body[:4]) != "RIFF" {
		return fmt.Errorf("response is not WAV audio")
	}
	return nil
}

func checkEmbeddings(ctx context.Context, client *http.Client, base string) error {
	body, err := postJSON(ctx, client, base+"/embed", map[string]any{"input": "smoke"})
	if err != nil {
		return err
	}
	var resp struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
		Dimensions int `json:"dimensions"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("decode embed response: %w", err)
	}
	if len(resp.Data) != 1 {
		return fmt.Errorf("expected 1 embedding, got %d", len(resp.Data))
	}
	if got := len(resp.Data[0].Embedding); got != resp.Dimensions || got == 0 {
		return fmt.Errorf("embedding length %d does not match dimensions %d", got, resp.Dimensions)
	}
	return nil
}

func checkSTT(ctx context.Context, client *http.Client, base string) error {
	wav := syntheticWAV(16000, 4000) // quarter second of silence
	body, err := postMultipart(ctx, client, base+"/transcribe", "smoke.wav", wav, nil)
	if err != nil {
		return err
	}
	var resp struct {
		Text     *string `json:"text"`
		Language string  `json:"language"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("decode transcribe response: %w", err)
	}
	// silence legitimately transcribes to "", so only the field's presence
	// is asserted
	if resp.Text == nil {
		return fmt.Errorf("transcribe response missing text field")
	}
	return nil
}

func checkVision(ctx context.Context, client *http.Client, base string) error {
	body, err := postMultipart(ctx, client, base+"/describe", "smoke.png", syntheticPNG(),
		map[string]string{"prompt": "What color is this image?", "max_tokens": "16"})
	if err != nil {
		return err
	}
	var resp struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("decode describe response: %w", err)
	}
	if resp.Text == "" {
		return fmt.Errorf("describe response missing text")
	}
	return nil
}

func checkImagegen(ctx context.Context, client *http.Client, base string) error {
	body, err := postJSON(ctx, client, base+"/generate", map[string]any{
		"prompt": "a single black dot on white",
		"steps":  1,
		"width":  256,
		"height": 256,
	})
	if err != nil {
		return err
	}
	if !bytes.HasPrefix(body, pngMagic) {
		return fmt.Errorf("response is not a PNG image")
	}
	return nil
}

func postJSON(ctx context.Context, client *http.Client, url string, payload any) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return doRead(client, req)
}

func postMultipart(ctx context.Context, client *http.Client, url, filename string, content []byte, fields map[string]string) ([]byte, error) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(content); err != nil {
		return nil, err
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return doRead(client, req)
}

func doRead(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := string(body)
		if len(detail) > 256 {
			detail = detail[:256]
		}
		return nil, fmt.Errorf("http %s: %s", resp.Status, detail)
	}
	return body, nil
}
