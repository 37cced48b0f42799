package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Resolve dependencies and assemble the runtime root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Build(cmd.Context(), configPath(cmd))
		},
	}
}

func (c *CLI) newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Materialize the locked dependency set into an isolated environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Resolve(cmd.Context(), configPath(cmd))
		},
	}
}

func (c *CLI) newAssembleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assemble",
		Short: "Assemble the runtime root from a resolved environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Assemble(cmd.Context(), configPath(cmd))
		},
	}
}
