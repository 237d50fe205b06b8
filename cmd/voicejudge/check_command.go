package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"voicejudge/internal/faults"
	"voicejudge/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var requireTerminal bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check stimuli, audio tools and output directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cfg, preflight.Options{RequireTerminal: requireTerminal})
			out := cmd.OutOrStdout()
			renderChecks(out, results, shouldColorize(out))
			if failed := preflight.Failures(results); len(failed) > 0 {
				return faults.Wrap(faults.ErrConfiguration, "cli", "check", fmt.Sprintf("%d station checks failed", len(failed)), nil)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&requireTerminal, "require-terminal", false, "Fail when stdin and stdout are not an interactive terminal")
	return cmd
}
