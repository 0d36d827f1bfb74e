package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/intelligrit/guess-tally/internal/logger"
	"github.com/intelligrit/guess-tally/internal/ranking"
	"github.com/intelligrit/guess-tally/internal/round"
	"github.com/intelligrit/guess-tally/internal/tables"
)

var rankNumber string

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Recompute distances and order for a round without reading a transcript",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		number, err := promptValue(rankNumber, "Enter Round Number")
		if err != nil {
			return err
		}
		name := round.Name(number)

		t, err := tables.LoadRound(paths().Round(name))
		if err != nil {
			return err
		}
		standings := ranking.Run(ctx, t, log)
		if err := t.Save(paths().Round(name)); err != nil {
			return fmt.Errorf("saving round table: %w", err)
		}
		log.Info(ctx, "round ranked", logger.String("round", name), logger.Int("ranked", len(standings)))

		fmt.Print(round.FormatResults(name, standings))
		return nil
	},
}

func init() {
	rankCmd.Flags().StringVar(&rankNumber, "round", "", "Round number")
	rootCmd.AddCommand(rankCmd)
}
