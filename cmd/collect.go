package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/intelligrit/guess-tally/internal/collect"
	"github.com/intelligrit/guess-tally/internal/logger"
	"github.com/intelligrit/guess-tally/internal/metrics"
	"github.com/intelligrit/guess-tally/internal/reconcile"
	"github.com/intelligrit/guess-tally/internal/round"
	"github.com/intelligrit/guess-tally/internal/store"
	"github.com/intelligrit/guess-tally/internal/webhook"
)

var (
	collectNumber     string
	collectTranscript string
	collectYes        bool
	collectAutoAlias  bool
	collectPost       bool
	collectNoKML      bool
	collectNoArchive  bool
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Review submissions from a chat transcript and rank the round",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		number, err := promptValue(collectNumber, "Enter Round Number")
		if err != nil {
			return err
		}
		source := collectTranscript
		if source == "" {
			source = cfg.Data.Transcript
		}

		prompter := reconcile.NewPrompter(stdin, os.Stdout)
		p := &collect.Pipeline{
			Paths:           paths(),
			Chooser:         prompter,
			Confirmer:       prompter,
			Metrics:         metrics.New(),
			MetricsTextfile: cfg.Metrics.Textfile,
			SkipKML:         collectNoKML,
			Log:             log,
		}
		if collectAutoAlias {
			p.Chooser = reconcile.AuthorAlias{}
		}
		if collectYes {
			p.Confirmer = reconcile.ApproveAll{}
		}

		if !collectNoArchive {
			s, err := store.New(dataDir)
			if err != nil {
				log.Error(ctx, "opening archive failed, continuing without it", logger.Error(err))
			} else {
				defer s.Close()
				p.Archive = s
			}
		}

		if collectPost {
			if cfg.Webhook.URL == "" {
				return fmt.Errorf("--post needs webhook.url in the config")
			}
			p.Poster = webhook.New(cfg.Webhook.URL, cfg.Webhook.RateLimit)
		}

		res, err := p.Run(ctx, number, source)
		if err != nil {
			return err
		}

		run := res.Run
		fmt.Printf("\nSubmissions saved to %s\n", paths().Round(run.Round))
		fmt.Println("roundlist.csv updated.")
		fmt.Printf("Segmented: %d  Unparseable: %d  Approved: %d  Rejected: %d  New players: %d\n",
			run.Segmented, run.Unparseable, run.Approved, run.Rejected, run.NewPlayers)
		fmt.Println()
		fmt.Print(round.FormatResults(run.Round, res.Standings))
		return nil
	},
}

func init() {
	collectCmd.Flags().StringVar(&collectNumber, "round", "", "Round number")
	collectCmd.Flags().StringVar(&collectTranscript, "transcript", "", "Transcript file or URL (default from config)")
	collectCmd.Flags().BoolVarP(&collectYes, "yes", "y", false, "Approve every parsed submission")
	collectCmd.Flags().BoolVar(&collectAutoAlias, "auto-alias", false, "Use display names as aliases for new users")
	collectCmd.Flags().BoolVar(&collectPost, "post", false, "Post the results to the configured webhook")
	collectCmd.Flags().BoolVar(&collectNoKML, "no-kml", false, "Skip writing the round KML")
	collectCmd.Flags().BoolVar(&collectNoArchive, "no-archive", false, "Skip recording the run in the archive database")
	rootCmd.AddCommand(collectCmd)
}
