package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/intelligrit/guess-tally/internal/kmlexport"
	"github.com/intelligrit/guess-tally/internal/round"
	"github.com/intelligrit/guess-tally/internal/tables"
)

var kmlNumber string

var kmlCmd = &cobra.Command{
	Use:   "kml",
	Short: "Regenerate a round's KML map",
	RunE: func(cmd *cobra.Command, args []string) error {
		number, err := promptValue(kmlNumber, "Enter Round Number")
		if err != nil {
			return err
		}
		name := round.Name(number)

		t, err := tables.LoadRound(paths().Round(name))
		if err != nil {
			return err
		}
		if err := kmlexport.Save(paths().KML(name), name, t); err != nil {
			return fmt.Errorf("writing kml: %w", err)
		}
		fmt.Printf("KML saved to %s\n", paths().KML(name))
		return nil
	},
}

func init() {
	kmlCmd.Flags().StringVar(&kmlNumber, "round", "", "Round number")
	rootCmd.AddCommand(kmlCmd)
}
