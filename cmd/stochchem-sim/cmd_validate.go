package main

import (
	"errors"
	"fmt"

	"github.com/daniacca/stochchem/internal/ssa"
	"github.com/spf13/cobra"
)

type validateResult struct {
	Valid    bool     `json:"valid"`
	Network  string   `json:"network,omitempty"`
	Species  int      `json:"species,omitempty"`
	Channels int      `json:"channels,omitempty"`
	Issues   []string `json:"issues,omitempty"`
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a network file and list every problem found",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ssa.LoadNetworkConfig(args[0])
			if err != nil {
				return err
			}

			res := validateResult{Valid: true, Network: cfg.Name}
			net, err := ssa.BuildNetworkFromConfig(cfg)
			if err == nil {
				_, err = ssa.InitialState(net, cfg)
			}
			if err != nil {
				res.Valid = false
				var verr *ssa.ValidationError
				if errors.As(err, &verr) {
					res.Issues = verr.Issues
				} else {
					res.Issues = []string{err.Error()}
				}
			} else {
				res.Species = net.NumSpecies()
				res.Channels = net.NumChannels()
			}

			if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if !res.Valid {
				return fmt.Errorf("%s: %d issue(s) found", args[0], len(res.Issues))
			}
			return nil
		},
	}
}
