package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imadgeboyega/datewrapped/internal/client/view"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show totals, scores and charts for your entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := app.authorized()
		if err != nil {
			return err
		}
		summary, err := api.Stats(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), view.Summary(summary, app.styles))
		return nil
	},
}
