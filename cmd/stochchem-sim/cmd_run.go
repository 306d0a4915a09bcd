package main

import (
	"time"

	"github.com/daniacca/stochchem/internal/ssa"
	"github.com/daniacca/stochchem/internal/ssa/notifiers"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate one trajectory",
		Long: `Simulate one trajectory and print it with its final status.

The state is sampled at t = 0, dt, ..., (samples-1)*dt; each sample holds the
state as of the last event at or before that time.

Examples:
  stochchem-sim run --circuit simple_gene_expression --dt 0.5 --samples 201
  stochchem-sim run --network examples/networks/birth_death.yaml --seed 42
  stochchem-sim run --circuit repression --param r=10 --output traj.json`,
		RunE: runRun,
	}
	addModelFlags(cmd)
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, logger, model, err := setup(cmd)
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := ssa.Run(cmd.Context(), model.Network, model.Initial, model.Times, cfg.Seed, model.Options...)
	if err != nil {
		return err
	}
	if !res.Complete() {
		logger.Warnf("run stopped early: status=%s events=%d clock=%g samples=%d/%d",
			res.Status, res.Events, res.Clock, res.Trajectory.Len(), len(model.Times))
	}
	logger.Infof("run finished: network=%s status=%s events=%d", model.Network.Name, res.Status, res.Events)
	notifyWebhook(cmd.Context(), cfg, logger, notifiers.RunReport(model.Network.Name, res, time.Since(start)))
	return output(cmd, cfg, res)
}
