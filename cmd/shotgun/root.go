package main

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/ensemble/config"
	"github.com/YuminosukeSato/ensemble/pkg/log"
)

var version = "dev"

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "shotgun",
		Short: "Shotgun - ensemble selection from libraries of model predictions",
		Long: `Shotgun builds ensembles from a library of precomputed model predictions.

The prediction folder holds one directory per split. Each directory contains a
single targets.* file with one 0/1 label per line and one file per model,
named <model>.<split>, with one probability per line. The ensemble is grown or
pruned on the training split by a greedy search and reported on every split.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	cmd.AddCommand(newSelectCommand(opts))
	cmd.AddCommand(newEvalCommand(opts))

	return cmd
}

// loadConfig reads the configuration file if one was given and sets up
// logging from it. The --log-level and --debug flags take precedence.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.LogLevel = "debug"
	}
	if err := log.SetupLogger(cfg.LogLevel, cmd.ErrOrStderr()); err != nil {
		return nil, err
	}
	return cfg, nil
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
