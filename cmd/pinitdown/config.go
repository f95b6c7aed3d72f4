package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pinitdown/pkg/config"
	"pinitdown/pkg/ui"
)

func newConfigCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
		Long: `Manage pinitdown configuration files.

Configuration is loaded from, highest priority first:
  - Command line flags
  - Environment variables (PINITDOWN_*)
  - .env files (./.env and ~/.pinitdown.env)
  - Configuration file
  - Default values`,
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the default values",
		Long: `Write a configuration file holding every option at its default value.

The file is written to --config when given, otherwise to
~/.config/pinitdown/config.yaml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := g.configFile
			if path == "" {
				path = config.DefaultPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return newUsageError("configuration file already exists: %s (use --force to overwrite)", path)
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			ui.PrintSuccess("Configuration file created: " + path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g, nil)
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to format configuration: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Long: `Load the configuration from every source and report invalid values.
All problems are listed at once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g, nil)
			if err != nil {
				return err
			}
			ui.PrintSuccess("Configuration is valid")
			ui.PrintInfo("Output directory", cfg.Output.Directory)
			ui.PrintInfo("Concurrent", fmt.Sprint(cfg.Download.Concurrent))
			ui.PrintInfo("Requests per minute", fmt.Sprint(cfg.HTTP.RequestsPerMinute))
			ui.PrintInfo("Log level", cfg.Logging.Level)
			if cfg.HTTP.InsecureSkipVerify {
				ui.PrintWarning("TLS certificate verification is disabled")
			}
			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd, validateCmd)
	return cmd
}
