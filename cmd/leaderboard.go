package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/intelligrit/guess-tally/internal/store"
)

var leaderboardMinRounds int

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show standings across all archived rounds",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.New(dataDir)
		if err != nil {
			return err
		}
		defer s.Close()

		board, err := s.Leaderboard()
		if err != nil {
			return err
		}

		fmt.Printf("%-4s %-24s %6s %5s %12s %12s\n", "#", "Alias", "Rounds", "Wins", "Avg (mi)", "Best (mi)")
		place := 0
		for _, e := range board {
			if e.RoundsPlayed < leaderboardMinRounds {
				continue
			}
			place++
			fmt.Printf("%-4d %-24s %6d %5d %12.2f %12.2f\n", place, e.Alias, e.RoundsPlayed, e.Wins, e.AverageMiles, e.BestMiles)
		}
		if place == 0 {
			fmt.Println("No archived results yet.")
		}
		return nil
	},
}

func init() {
	leaderboardCmd.Flags().IntVar(&leaderboardMinRounds, "min-rounds", 0, "Only list aliases with at least this many rounds")
	rootCmd.AddCommand(leaderboardCmd)
}
