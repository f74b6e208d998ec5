package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lthummus/qlock/internal/db/sqlite"
	"github.com/lthummus/qlock/internal/render"
)

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 25, "number of trials to show")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "show recorded trials",
	Long:  "shows the most recent trials saved with `qlock run --record`. Requires db.file to be set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := sqlite.NewSQLiteFromConfig()
		if err != nil {
			return err
		}
		defer s.Close()

		trials, err := s.RecentTrials(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}

		return render.History(cmd.OutOrStdout(), trials)
	},
}
