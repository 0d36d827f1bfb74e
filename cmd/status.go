package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/intelligrit/guess-tally/internal/store"
	"github.com/intelligrit/guess-tally/internal/tables"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show roster and archive progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		roster, err := tables.LoadRoster(paths().Roster())
		if err != nil {
			return err
		}
		knownAliases := 0
		if _, err := os.Stat(paths().Aliases()); err == nil {
			aliases, err := tables.OpenAliases(paths().Aliases())
			if err != nil {
				return err
			}
			knownAliases = aliases.Len()
		}

		var rounds []string
		for _, col := range roster.Columns() {
			if strings.HasPrefix(col, "Round ") {
				rounds = append(rounds, col)
			}
		}

		fmt.Printf("Tally Status\n")
		fmt.Printf("============\n")
		fmt.Printf("Roster players:   %d\n", max(len(roster.Names())-boolInt(roster.HasName("Location")), 0))
		fmt.Printf("Known aliases:    %d\n", knownAliases)
		fmt.Printf("Rounds prepared:  %d\n", len(rounds))

		s, err := store.New(dataDir)
		if err != nil {
			return err
		}
		defer s.Close()

		fmt.Printf("Rounds archived:  %d\n", s.RoundCount())
		fmt.Printf("Collect runs:     %d\n", s.RunCount())
		fmt.Printf("Ranked players:   %d\n", s.PlayerCount())
		if last := s.LastRunAt(); last != "" {
			fmt.Printf("Last run:         %s\n", last)
		}

		if len(rounds) > 0 {
			archived := s.ResultCountByRound()
			fmt.Printf("\nPer-Round Breakdown\n")
			fmt.Printf("-------------------\n")
			for _, r := range rounds {
				submitted := roster.Count(r) - boolInt(roster.Get("Location", r) != "")
				_, err := tables.LoadRound(paths().Round(r))
				table := "ok"
				if err != nil {
					table = "missing"
				}
				fmt.Printf("  %-10s  submitted: %3d  ranked: %3d  table: %s\n", r, submitted, archived[r], table)
			}
		}

		return nil
	},
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
