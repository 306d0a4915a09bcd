package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve simulations over an HTTP JSON API",
		Long: `Serve the simulator over HTTP until interrupted.

Endpoints:
  GET  /healthz           liveness
  GET  /circuits          built-in circuits
  GET  /circuits/{name}   one circuit as a network configuration
  POST /validate          validate a network configuration
  POST /run               simulate one trajectory
  POST /ensemble          simulate an ensemble

POST /run and /ensemble take {"circuit": name} or {"network": {...}} plus
seed, dt, samples, parameters, initial, max_events, max_time, and for
ensembles runs and mean_only.

Examples:
  stochchem-sim serve --addr :8080 --workers 4
  curl -d '{"circuit":"repression","samples":11}' localhost:8080/run`,
		RunE: runServe,
	}
	registerResolvers(cmd.Flags(), serveResolvers)
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	var cfg SimConfig
	resolveConfig(cmd, &cfg, append([]configResolver{logLevelResolver}, serveResolvers...)...)
	logger := NewLoggerTo(cmd.ErrOrStderr(), cfg.LogLevel)

	srv := NewServer(logger.Named("api"))
	srv.SetWorkers(cfg.Workers)
	srv.SetLimits(cfg.MaxRuns, cfg.MaxSamples)
	srv.SetTimeout(cfg.Timeout)

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}
	httpSrv := &http.Server{Handler: srv.Routes(), ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.Serve(ln)
	}()
	logger.Infof("stochchem-sim API listening on http://%s (workers=%d max-runs=%d timeout=%s)", ln.Addr(), cfg.Workers, cfg.MaxRuns, cfg.Timeout)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-cmd.Context().Done():
	}

	logger.Infof("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
