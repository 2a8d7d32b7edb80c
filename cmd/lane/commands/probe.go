package commands

import (
	"fmt"

	"github.com/lanebuild/lane/internal/adapters/hostcaps"
	"github.com/spf13/cobra"
)

func (c *CLI) newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Locate the compiler and report what this host can run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, overrides := c.overrides(cmd)
			handle, cfg, err := c.app.Probe(cmd.Context(), configPath, overrides)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "compiler: %s\n", handle.Path)
			_, _ = fmt.Fprintf(out, "version:  %s\n", handle.Version)
			_, _ = fmt.Fprintf(out, "target:   %s, %d-bit addressing\n", cfg.Target.Arch, cfg.Target.Addressing)

			_, _ = fmt.Fprintf(out, "supported variants for %s:\n", cfg.Target.Arch)
			for _, v := range handle.Capabilities.Variants[cfg.Target.Arch] {
				_, _ = fmt.Fprintf(out, "  %s\n", v)
			}

			_, _ = fmt.Fprintln(out, "requested variants:")
			for _, entry := range hostcaps.Report(cfg.Target.Variants) {
				verdict := "not runnable on this host"
				if entry.Supported {
					verdict = "runnable on this host"
				}
				_, _ = fmt.Fprintf(out, "  %-16s %s\n", entry.Variant, verdict)
			}
			return nil
		},
	}
}
