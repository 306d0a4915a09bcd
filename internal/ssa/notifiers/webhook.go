package notifiers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/daniacca/stochchem/internal/ssa"
)

// Report summarizes a finished run or ensemble for a webhook.
type Report struct {
	Kind     string         `json:"kind"`
	Network  string         `json:"network"`
	Seed     uint64         `json:"seed"`
	Runs     int            `json:"runs"`
	Statuses map[string]int `json:"statuses"`
	Events   uint64         `json:"events"`
	Clock    float64        `json:"clock,omitempty"`
	Elapsed  string         `json:"elapsed"`
}

// RunReport summarizes a single trajectory.
func RunReport(network string, res *ssa.Result, elapsed time.Duration) Report {
	return Report{
		Kind:     "run",
		Network:  network,
		Seed:     res.Seed,
		Runs:     1,
		Statuses: map[string]int{res.Status.String(): 1},
		Events:   res.Events,
		Clock:    res.Clock,
		Elapsed:  elapsed.String(),
	}
}

// EnsembleReport summarizes an ensemble; Events is the total over all runs.
func EnsembleReport(network string, seed uint64, ens *ssa.Ensemble, elapsed time.Duration) Report {
	r := Report{
		Kind:     "ensemble",
		Network:  network,
		Seed:     seed,
		Runs:     len(ens.Results),
		Statuses: make(map[string]int),
		Elapsed:  elapsed.String(),
	}
	for st, n := range ens.StatusCounts() {
		r.Statuses[st.String()] = n
	}
	for _, res := range ens.Results {
		if res != nil {
			r.Events += res.Events
		}
	}
	return r
}

// WebhookNotifier posts reports as JSON to a webhook URL
type WebhookNotifier struct {
	url     string
	client  *http.Client
	headers map[string]string
}

// NewWebhookNotifier creates a new webhook notifier
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:     url,
		client:  &http.Client{Timeout: 5 * time.Second},
		headers: make(map[string]string),
	}
}

// SetHeader sets a custom header to include in webhook requests
func (wn *WebhookNotifier) SetHeader(key, value string) {
	wn.headers[key] = value
}

// URL returns the webhook URL
func (wn *WebhookNotifier) URL() string {
	return wn.url
}

// Notify sends the report to the webhook URL
func (wn *WebhookNotifier) Notify(ctx context.Context, report Report) error {
	jsonData, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wn.url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range wn.headers {
		req.Header.Set(key, value)
	}

	resp, err := wn.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
