// Package commands implements the CLI commands for the lane build tool.
package commands

import (
	"context"
	"io"

	"github.com/lanebuild/lane/internal/adapters/config"
	"github.com/lanebuild/lane/internal/app"
	"github.com/lanebuild/lane/internal/build"
	"github.com/spf13/cobra"
)

// CLI represents the command line interface for lane.
type CLI struct {
	app     *app.App
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given app.
func New(a *app.App) *CLI {
	rootCmd := &cobra.Command{
		Use:           "lane",
		Short:         "Compile SPMD kernels into a linkable archive with Go bindings",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultManifest, "Path to the build manifest")
	rootCmd.PersistentFlags().String("compiler", "", "Path to the SPMD compiler, overriding manifest and environment")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output directory, overriding the manifest")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newProbeCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput redirects command output. Used for testing.
func (c *CLI) SetOutput(w io.Writer) {
	c.rootCmd.SetOut(w)
	c.rootCmd.SetErr(w)
}

func (c *CLI) overrides(cmd *cobra.Command) (string, app.Overrides) {
	configPath, _ := cmd.Flags().GetString("config")
	compiler, _ := cmd.Flags().GetString("compiler")
	output, _ := cmd.Flags().GetString("output")
	parallelism, _ := cmd.Flags().GetInt("jobs")
	tasksys, _ := cmd.Flags().GetBool("tasksys")
	return configPath, app.Overrides{
		Compiler:    compiler,
		OutputDir:   output,
		Parallelism: parallelism,
		TaskSystem:  tasksys,
	}
}
