package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/intelligrit/guess-tally/internal/logger"
	"github.com/intelligrit/guess-tally/internal/round"
	"github.com/intelligrit/guess-tally/internal/webhook"
)

var (
	prepNumber  string
	prepName    string
	prepCountry string
	prepCoords  string
	prepEnds    string
	prepPost    bool
)

var prepRoundCmd = &cobra.Command{
	Use:   "prep-round",
	Short: "Create a round's tables and print its announcement",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		number, err := promptValue(prepNumber, "Enter Round Number")
		if err != nil {
			return err
		}
		name, err := promptValue(prepName, "Enter Location Name")
		if err != nil {
			return err
		}
		country, err := promptValue(prepCountry, "Enter Country Code")
		if err != nil {
			return err
		}
		coordLine, err := promptValue(prepCoords, "Enter Coordinates")
		if err != nil {
			return err
		}
		target, err := round.ParseTarget(coordLine)
		if err != nil {
			return err
		}

		loc, ok := round.LoadLocation(cfg.Round.Timezone)
		if !ok {
			log.Warn(ctx, "unknown timezone, falling back to UTC", logger.String("timezone", cfg.Round.Timezone))
		}
		endsInput, err := promptValue(prepEnds, fmt.Sprintf("Enter Round End Time (e.g. 9:30 PM, 21:30, 2025-01-05 21:30) [%s]", loc))
		if err != nil {
			return err
		}
		ends, err := round.ParseEnd(endsInput, loc, time.Now())
		if err != nil {
			return err
		}

		roundName, err := round.Prepare(paths(), number, target)
		if err != nil {
			return err
		}
		log.Info(ctx, "round prepared",
			logger.String("round", roundName),
			logger.String("table", paths().Round(roundName)))

		msg := round.Announcement{
			Number:   number,
			Location: name,
			Country:  country,
			Target:   target,
			Ends:     ends,
			Links:    round.LinksFrom(cfg.Links),
		}.Format()

		fmt.Println("\nFormatted Message:")
		fmt.Println()
		fmt.Print(msg)

		if prepPost {
			if cfg.Webhook.URL == "" {
				return fmt.Errorf("--post needs webhook.url in the config")
			}
			if err := webhook.New(cfg.Webhook.URL, cfg.Webhook.RateLimit).Post(ctx, msg); err != nil {
				return fmt.Errorf("posting announcement: %w", err)
			}
			log.Info(ctx, "announcement posted")
		}
		return nil
	},
}

func init() {
	prepRoundCmd.Flags().StringVar(&prepNumber, "round", "", "Round number")
	prepRoundCmd.Flags().StringVar(&prepName, "name", "", "Location name")
	prepRoundCmd.Flags().StringVar(&prepCountry, "country", "", "Two-letter country code")
	prepRoundCmd.Flags().StringVar(&prepCoords, "coords", "", `Target as "lat, lon" or "Latitude: x, Longitude: y"`)
	prepRoundCmd.Flags().StringVar(&prepEnds, "ends", "", "Round end time in the configured timezone")
	prepRoundCmd.Flags().BoolVar(&prepPost, "post", false, "Post the announcement to the configured webhook")
	rootCmd.AddCommand(prepRoundCmd)
}
