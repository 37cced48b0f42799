package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newLaunchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "launch",
		Short: "Launch the service from the assembled runtime root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Launch(cmd.Context(), configPath(cmd))
		},
	}
}

func (c *CLI) newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Run a single liveness check against the configured probe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Probe(cmd.Context(), configPath(cmd))
		},
	}
}
