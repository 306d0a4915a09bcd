package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/daniacca/stochchem/internal/ssa"
	"github.com/daniacca/stochchem/internal/ssa/notifiers"
	"github.com/spf13/cobra"
)

func newStreamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Simulate one trajectory and stream its events over WebSocket",
		Long: `Simulate one trajectory while broadcasting every event as JSON to WebSocket
clients connected to ws://<addr>/events. Events are paced to --rate per second
of wall-clock time so a viewer can follow the run. The sampled trajectory is
printed when the run ends.

Examples:
  stochchem-sim stream --circuit negative_autoregulation --wait-clients 1
  stochchem-sim stream --network net.yaml --addr :8090 --rate 0`,
		RunE: runStream,
	}
	addModelFlags(cmd)
	registerResolvers(cmd.Flags(), streamResolvers)
	return cmd
}

func runStream(cmd *cobra.Command, args []string) error {
	cfg, logger, model, err := setup(cmd, streamResolvers...)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	notifier := notifiers.NewWebSocketNotifier(model.Network.Name)
	defer notifier.Close()

	mux := http.NewServeMux()
	mux.Handle("/events", notifier)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Named("stream").Errorf("server: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logger.Infof("streaming events on ws://%s/events", ln.Addr())

	if err := waitForClients(ctx, notifier, cfg.WaitClients, logger); err != nil {
		return err
	}

	start := time.Now()
	opts := append(model.Options, ssa.WithObserver(notifiers.NewPacedObserver(ctx, notifier, cfg.Rate)))
	res, err := ssa.Run(ctx, model.Network, model.Initial, model.Times, cfg.Seed, opts...)
	if err != nil {
		return err
	}

	if !notifier.Flush(5 * time.Second) {
		logger.Warnf("event stream not drained before shutdown")
	}
	if n := notifier.Dropped(); n > 0 {
		logger.Warnf("%d events dropped by the stream; lower --rate", n)
	}
	logger.Infof("run finished: network=%s status=%s events=%d", model.Network.Name, res.Status, res.Events)
	notifyWebhook(ctx, cfg, logger, notifiers.RunReport(model.Network.Name, res, time.Since(start)))
	return output(cmd, cfg, res)
}

// waitForClients blocks until n clients are connected or ctx is done.
func waitForClients(ctx context.Context, notifier *notifiers.WebSocketNotifier, n int, logger *Logger) error {
	if n <= 0 {
		return nil
	}
	logger.Infof("waiting for %d client(s)", n)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for notifier.Clients() < n {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
