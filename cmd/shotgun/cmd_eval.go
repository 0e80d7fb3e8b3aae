package main

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/ensemble/selection"
)

func newEvalCommand(root *rootOptions) *cobra.Command {
	flags := &selectFlags{}
	cmd := &cobra.Command{
		Use:   "eval <pred_folder> <train_name>",
		Short: "Report the performance of every model on its own",
		Long: `Report the performance of every model of the prediction library on its own,
ranked by the chosen metric on the split named train_name. No ensemble is
built.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			flags.apply(cmd, cfg)
			cfg.Train = args[1]
			cfg.WriteBestPredictions = false
			cfg.Plot = ""
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runSelection(cmd.Context(), cfg, args[0], selection.StrategyEachModel, flags.echo, cmd.OutOrStdout())
		},
	}
	flags.register(cmd)
	return cmd
}
