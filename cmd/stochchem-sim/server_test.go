package main

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/daniacca/stochchem/internal/ssa"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := NewServer(NewLoggerTo(&bytes.Buffer{}, "error"))
	srv.SetWorkers(2)
	srv.SetLimits(50, 1000)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestServer_Circuits(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/circuits")
	if err != nil {
		t.Fatalf("GET /circuits failed: %v", err)
	}
	defer resp.Body.Close()
	var infos []circuitInfo
	if err := json.NewDecoder(resp.Body).Decode(&infos); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(infos) == 0 {
		t.Error("Expected circuits in the response")
	}

	resp, err = http.Get(ts.URL + "/circuits/feed_forward_loop")
	if err != nil {
		t.Fatalf("GET circuit failed: %v", err)
	}
	defer resp.Body.Close()
	var cfg ssa.NetworkConfig
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		t.Fatalf("Failed to decode circuit: %v", err)
	}
	if cfg.Name != "feed_forward_loop" || len(cfg.Species) != 2 {
		t.Errorf("Unexpected circuit config: %s with %d species", cfg.Name, len(cfg.Species))
	}

	resp, err = http.Get(ts.URL + "/circuits/oscillator")
	if err != nil {
		t.Fatalf("GET circuit failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}
}

func TestServer_Validate(t *testing.T) {
	ts := newTestServer(t)

	valid := `{"name":"decay","species":[{"name":"X"}],"parameters":{"k":1},"initial":{"X":5},
		"channels":[{"id":"d","reactants":[{"species":"X"}],"law":{"kind":"mass_action","rate":"k"},"delta":{"X":-1}}]}`
	resp := post(t, ts.URL+"/validate", valid)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	invalid := `{"name":"","species":[{"name":"X"}],"channels":[]}`
	resp = post(t, ts.URL+"/validate", invalid)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", resp.StatusCode)
	}
	var res validateResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if res.Valid || len(res.Issues) != 2 {
		t.Errorf("Expected 2 issues, got %+v", res)
	}

	resp = post(t, ts.URL+"/validate", "{")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400 for malformed json, got %d", resp.StatusCode)
	}
}

func TestServer_Run(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts.URL+"/run", `{"circuit":"simple_gene_expression","seed":4,"dt":0.5,"samples":9,"initial":{"X":3}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	var res ssa.Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("Failed to decode result: %v", err)
	}
	if res.Trajectory.Len() != 9 || res.Seed != 4 {
		t.Errorf("Expected 9 samples with seed 4, got %d samples seed %d", res.Trajectory.Len(), res.Seed)
	}
	if res.Trajectory.Samples[0].Counts[0] != 3 {
		t.Errorf("Expected initial override X=3, got %d", res.Trajectory.Samples[0].Counts[0])
	}
}

func TestServer_RunSameSeedSameResult(t *testing.T) {
	ts := newTestServer(t)
	body := `{"circuit":"negative_autoregulation","seed":11,"samples":5}`

	decode := func() ssa.Result {
		var res ssa.Result
		if err := json.NewDecoder(post(t, ts.URL+"/run", body).Body).Decode(&res); err != nil {
			t.Fatalf("Failed to decode result: %v", err)
		}
		return res
	}
	a, b := decode(), decode()
	if a.Events != b.Events || a.Clock != b.Clock {
		t.Errorf("Expected identical runs for one seed, got %d/%g and %d/%g", a.Events, a.Clock, b.Events, b.Clock)
	}
}

func TestServer_RunInlineNetwork(t *testing.T) {
	ts := newTestServer(t)
	body := `{"network":{"name":"decay","species":[{"name":"X"}],"parameters":{"k":1},"initial":{"X":5},
		"channels":[{"id":"d","reactants":[{"species":"X"}],"law":{"kind":"mass_action","rate":"k"},"delta":{"X":-1}}]},
		"samples":3,"dt":100}`

	resp := post(t, ts.URL+"/run", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	var res ssa.Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("Failed to decode result: %v", err)
	}
	if res.Status != ssa.StatusHalted || res.Events != 5 {
		t.Errorf("Expected the decay to halt after 5 events, got %s after %d", res.Status, res.Events)
	}
}

func TestServer_RunBadRequests(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"no network", `{"seed":1}`},
		{"both network and circuit", `{"circuit":"repression","network":{"name":"x"}}`},
		{"unknown circuit", `{"circuit":"oscillator"}`},
		{"invalid network", `{"network":{"name":"x","species":[{"name":"X"}]}}`},
		{"unknown species override", `{"circuit":"repression","initial":{"Q":1}}`},
		{"negative parameter", `{"circuit":"repression","parameters":{"gamma":-1}}`},
		{"unknown parameter", `{"circuit":"repression","parameters":{"gama":0}}`},
		{"negative max_time", `{"circuit":"repression","max_time":-1}`},
		{"negative dt", `{"circuit":"repression","dt":-1}`},
		{"too many samples", `{"circuit":"repression","samples":5000}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/run", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestServer_EnsembleMeanOnly(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts.URL+"/ensemble", `{"circuit":"simple_gene_expression","runs":20,"samples":3,"mean_only":true}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	var summary struct {
		Runs     int                `json:"runs"`
		Statuses map[string]int     `json:"statuses"`
		Mean     ssa.MeanTrajectory `json:"mean"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		t.Fatalf("Failed to decode summary: %v", err)
	}
	if summary.Runs != 20 || summary.Statuses["completed"] != 20 {
		t.Errorf("Expected 20 completed runs, got %d: %v", summary.Runs, summary.Statuses)
	}
	if len(summary.Mean.Times) != 3 || summary.Mean.Runs[2] != 20 {
		t.Errorf("Unexpected mean trajectory: %+v", summary.Mean)
	}
}

func TestServer_EnsembleFull(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts.URL+"/ensemble", `{"circuit":"repression","runs":4,"samples":2}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	var ens ssa.Ensemble
	if err := json.NewDecoder(resp.Body).Decode(&ens); err != nil {
		t.Fatalf("Failed to decode ensemble: %v", err)
	}
	if len(ens.Results) != 4 {
		t.Errorf("Expected 4 results, got %d", len(ens.Results))
	}
}

func TestServer_EnsembleTooManyRuns(t *testing.T) {
	ts := newTestServer(t)
	resp := post(t, ts.URL+"/ensemble", `{"circuit":"repression","runs":51}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}
}

func TestServer_Timeout(t *testing.T) {
	srv := NewServer(NewLoggerTo(&bytes.Buffer{}, "error"))
	srv.SetTimeout(time.Nanosecond)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	resp := post(t, ts.URL+"/run", `{"circuit":"negative_autoregulation","dt":1000,"samples":1000}`)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", resp.StatusCode)
	}
}

func TestRespondJSON_EncodeFailureKeepsStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	respondJSON(rec, http.StatusOK, math.Inf(1))

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "cannot encode") {
		t.Errorf("Expected no error text appended to the body, got %q", rec.Body.String())
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/run")
	if err != nil {
		t.Fatalf("GET /run failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", resp.StatusCode)
	}
}

func TestServeCommand_ShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"serve", "--addr", "127.0.0.1:0", "--timeout", "5s"})

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	if err := cmd.ExecuteContext(ctx); err != nil {
		t.Fatalf("serve failed: %v", err)
	}
	if !strings.Contains(stderr.String(), "API listening on http://127.0.0.1:") {
		t.Errorf("Expected a listening log line, got %q", stderr.String())
	}
}
