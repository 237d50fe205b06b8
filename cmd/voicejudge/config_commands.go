package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"voicejudge/internal/config"
	"voicejudge/internal/faults"
	"voicejudge/internal/stimuli"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

// initTarget resolves where config init writes: the --path value, or the
// default per-user location.
func initTarget(flagValue string) (string, error) {
	target := strings.TrimSpace(flagValue)
	if target == "" {
		return config.DefaultConfigPath()
	}
	return config.ExpandPath(target)
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var stimuliDir string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(targetPath)
			if err != nil {
				return fmt.Errorf("resolve config path: %w", err)
			}
			if !overwrite {
				_, err := os.Stat(target)
				switch {
				case err == nil:
					return faults.Wrap(faults.ErrConfiguration, "cli", "config init",
						fmt.Sprintf("config file already exists at %s (use --overwrite to replace it)", target), nil)
				case !errors.Is(err, fs.ErrNotExist):
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if stimuliDir != "" {
				abs, err := filepath.Abs(stimuliDir)
				if err != nil {
					return fmt.Errorf("resolve stimuli directory: %w", err)
				}
				stimuliDir = abs
			}
			if err := config.CreateSample(target, stimuliDir); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			if stimuliDir == "" {
				fmt.Fprintln(out, "Set paths.stimuli_dir to the folder holding the condition subfolders, then run 'voicejudge check'.")
			} else {
				fmt.Fprintln(out, "Run 'voicejudge check' to confirm the stimulus folders are complete.")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().StringVar(&stimuliDir, "stimuli", "", "Stimulus root to write into the new configuration")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			if !ctx.configExists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "Stimuli directory: %s\n", cfg.Paths.StimuliDir)
			for _, folder := range stimuli.MainFolders(cfg) {
				fmt.Fprintf(out, "  %-10s %s\n", folder.Condition, folder.Dir)
			}
			fmt.Fprintf(out, "Output directory: %s\n", cfg.Paths.OutputDir)
			fmt.Fprintf(out, "Extraction failures: %s\n", cfg.Experiment.OnExtractionError)
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
