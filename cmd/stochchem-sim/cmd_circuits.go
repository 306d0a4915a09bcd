package main

import (
	"fmt"

	"github.com/daniacca/stochchem/internal/circuits"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type circuitInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Species     int    `json:"species"`
	Channels    int    `json:"channels"`
}

func newCircuitsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "circuits",
		Short: "List the built-in circuits",
		RunE: func(cmd *cobra.Command, args []string) error {
			all := circuits.All()
			infos := make([]circuitInfo, 0, len(all))
			for _, c := range all {
				cfg := c.Builder().Config()
				infos = append(infos, circuitInfo{
					Name:        c.Name,
					Description: c.Description,
					Species:     len(cfg.Species),
					Channels:    len(cfg.Channels),
				})
			}
			return writeJSON(cmd.OutOrStdout(), infos)
		},
	}
	cmd.AddCommand(newCircuitsExportCmd())
	return cmd
}

func newCircuitsExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <name>",
		Short: "Print a built-in circuit as a network file",
		Long: `Print a built-in circuit as a network file that 'run --network' accepts.

Examples:
  stochchem-sim circuits export repression > repression.yaml
  stochchem-sim circuits export feed_forward_loop --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			c, ok := circuits.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown circuit %q", args[0])
			}
			cfg := c.Builder().Config()
			switch format {
			case "yaml", "yml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(cfg); err != nil {
					return fmt.Errorf("failed to encode circuit: %w", err)
				}
				return enc.Close()
			case "json":
				return writeJSON(cmd.OutOrStdout(), cfg)
			default:
				return fmt.Errorf("unsupported format %q, must be yaml or json", format)
			}
		},
	}
	cmd.Flags().String("format", "yaml", "Output format: yaml, json")
	return cmd
}
