package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile every kernel and produce the archive and bindings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, overrides := c.overrides(cmd)
			_, err := c.app.Build(cmd.Context(), configPath, overrides)
			return err
		},
	}
	cmd.Flags().IntP("jobs", "j", 0, "Maximum concurrent compiler invocations (0 uses the core count)")
	cmd.Flags().Bool("tasksys", false, "Compile the bundled task system into the archive for kernels using launch")
	return cmd
}
