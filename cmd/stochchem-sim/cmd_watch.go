package main

import (
	"encoding/json"
	"fmt"

	"github.com/daniacca/stochchem/pkg/client"
	"github.com/spf13/cobra"
)

// watchResolvers reuse the stream address so both ends agree by default.
var watchResolvers = []configResolver{streamResolvers[0]}

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the events of a running stream as JSON lines",
		Long: `Connect to a 'stream' command and print every event as one JSON object per
line until the run ends or --limit events were printed.

Examples:
  stochchem-sim watch --addr 127.0.0.1:8090
  stochchem-sim watch --limit 100 | jq .state`,
		RunE: runWatch,
	}
	registerResolvers(cmd.Flags(), watchResolvers)
	cmd.Flags().Int("limit", 0, "stop after this many events; 0 means until the stream closes")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	var cfg SimConfig
	resolveConfig(cmd, &cfg, append([]configResolver{logLevelResolver}, watchResolvers...)...)
	logger := NewLoggerTo(cmd.ErrOrStderr(), cfg.LogLevel)
	limit, _ := cmd.Flags().GetInt("limit")

	c := client.NewStreamClient(cfg.Addr)
	if err := c.Healthy(cmd.Context()); err != nil {
		return fmt.Errorf("stream server at %s: %w", cfg.Addr, err)
	}
	logger.Infof("watching %s", cfg.Addr)

	enc := json.NewEncoder(cmd.OutOrStdout())
	seen := 0
	err := c.Subscribe(cmd.Context(), func(ev client.Event) error {
		if err := enc.Encode(ev); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
		seen++
		if limit > 0 && seen >= limit {
			return client.ErrStop
		}
		return nil
	})
	logger.Infof("watch finished: %d events", seen)
	return err
}
