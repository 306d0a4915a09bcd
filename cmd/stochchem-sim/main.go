package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/daniacca/stochchem/internal/ssa/notifiers"
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stochchem-sim",
		Short: "Exact stochastic simulation of chemical reaction networks",
		Long: `stochchem-sim runs Gillespie's direct method on a reaction network given as
a YAML/JSON file or picked from the built-in circuit library, and prints the
sampled trajectories as JSON.

Every flag can also be set through a STOCHCHEM_* environment variable.`,
		SilenceUsage: true,
	}

	registerResolvers(rootCmd.PersistentFlags(), []configResolver{logLevelResolver})

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newEnsembleCmd(),
		newStreamCmd(),
		newWatchCmd(),
		newServeCmd(),
		newCircuitsCmd(),
		newValidateCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd.OutOrStdout(), map[string]string{"version": version})
		},
	}
}

// addModelFlags registers the flags every simulation command shares.
func addModelFlags(cmd *cobra.Command) {
	registerResolvers(cmd.Flags(), modelResolvers)
	cmd.Flags().StringToString("param", nil, "override a parameter, e.g. --param gamma=0.1")
	cmd.Flags().StringToString("initial", nil, "override an initial count, e.g. --initial X=10")
}

// setup resolves the configuration, builds the logger and loads the model.
func setup(cmd *cobra.Command, resolvers ...configResolver) (SimConfig, *Logger, *Model, error) {
	var cfg SimConfig
	resolveConfig(cmd, &cfg, append([]configResolver{logLevelResolver}, append(modelResolvers, resolvers...)...)...)
	logger := NewLoggerTo(cmd.ErrOrStderr(), cfg.LogLevel)

	params, _ := cmd.Flags().GetStringToString("param")
	initial, _ := cmd.Flags().GetStringToString("initial")
	model, err := loadModel(cfg, params, initial, logger)
	if err != nil {
		return cfg, logger, nil, err
	}
	logger.Debugf("loaded network %s: %d species, %d channels", model.Network.Name, model.Network.NumSpecies(), model.Network.NumChannels())
	return cfg, logger, model, nil
}

// output writes v as JSON to the configured output file, or to the command's
// stdout when none is set.
func output(cmd *cobra.Command, cfg SimConfig, v any) error {
	if cfg.Output == "" {
		return writeJSON(cmd.OutOrStdout(), v)
	}
	f, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := writeJSON(f, v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// notifyWebhook posts report to the configured webhook. A failed delivery is
// logged and does not fail the command.
func notifyWebhook(ctx context.Context, cfg SimConfig, logger *Logger, report notifiers.Report) {
	if cfg.Webhook == "" {
		return
	}
	wn := notifiers.NewWebhookNotifier(cfg.Webhook)
	if cfg.WebhookToken != "" {
		wn.SetHeader("Authorization", "Bearer "+cfg.WebhookToken)
	}
	if err := wn.Notify(ctx, report); err != nil {
		logger.Warnf("webhook %s: %v", wn.URL(), err)
		return
	}
	logger.Debugf("webhook %s notified", wn.URL())
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
