// Package client reads the live event stream served by `stochchem-sim stream`.
//
// Each message on the stream is one committed reaction event. A typical
// consumer connects before the run starts (see the --wait-clients flag) and
// keeps reading until the server closes the stream at the end of the run.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

// ErrStop can be returned by a Handler to end Subscribe without an error.
var ErrStop = errors.New("stop subscription")

// Event is one committed reaction event as sent on the stream.
type Event struct {
	Seq       uint64  `json:"seq"`
	Time      float64 `json:"time"`
	Channel   int     `json:"channel"`
	ChannelID string  `json:"channel_id"`
	State     []int64 `json:"state"`
}

// Handler receives events in stream order. Returning a non-nil error stops
// the subscription.
type Handler func(Event) error

// StreamClient connects to a stochchem-sim event stream.
type StreamClient struct {
	baseURL string
	dialer  *websocket.Dialer
	http    *http.Client
}

// NewStreamClient creates a client for the server at baseURL, e.g.
// "http://127.0.0.1:8090". A bare host:port is accepted too.
func NewStreamClient(baseURL string) *StreamClient {
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	return &StreamClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		dialer:  websocket.DefaultDialer,
		http:    &http.Client{},
	}
}

// EventsURL returns the WebSocket URL of the event stream.
func (c *StreamClient) EventsURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	return u.JoinPath("events").String(), nil
}

// Healthy checks the server's health endpoint.
func (c *StreamClient) Healthy(ctx context.Context) error {
	u, err := url.JoinPath(c.baseURL, "healthz")
	if err != nil {
		return fmt.Errorf("failed to build URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Subscribe reads events and passes them to handle until the server closes
// the stream, handle returns an error, or ctx is done. A stream closed by the
// server and ErrStop both end the subscription with a nil error.
func (c *StreamClient) Subscribe(ctx context.Context, handle Handler) error {
	u, err := c.EventsURL()
	if err != nil {
		return err
	}
	conn, _, err := c.dialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", u, err)
	}
	defer conn.Close()

	// unblock ReadMessage when ctx ends
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				return nil
			}
			return fmt.Errorf("failed to read event: %w", err)
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("failed to decode event: %w", err)
		}
		if err := handle(ev); err != nil {
			if errors.Is(err, ErrStop) {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return nil
			}
			return err
		}
	}
}
