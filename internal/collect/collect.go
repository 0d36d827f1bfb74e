// Package collect runs one pass of submission collection for a round:
// transcript in, updated tables, map, archive and results post out.
package collect

import (
	"context"
	"fmt"
	"time"

	"github.com/intelligrit/guess-tally/internal/kmlexport"
	"github.com/intelligrit/guess-tally/internal/logger"
	"github.com/intelligrit/guess-tally/internal/metrics"
	"github.com/intelligrit/guess-tally/internal/model"
	"github.com/intelligrit/guess-tally/internal/ranking"
	"github.com/intelligrit/guess-tally/internal/reconcile"
	"github.com/intelligrit/guess-tally/internal/round"
	"github.com/intelligrit/guess-tally/internal/store"
	"github.com/intelligrit/guess-tally/internal/tables"
	"github.com/intelligrit/guess-tally/internal/transcript"
)

// Poster publishes a finished round's results.
type Poster interface {
	Post(ctx context.Context, content string) error
}

// Pipeline wires the collaborators of a collect run. Archive, Metrics and
// Poster are optional.
type Pipeline struct {
	Paths     tables.Paths
	Chooser   reconcile.AliasChooser
	Confirmer reconcile.Confirmer
	Archive   *store.Store
	Metrics   *metrics.Recorder
	Poster    Poster
	// MetricsTextfile, when set, receives the metrics after the run.
	MetricsTextfile string
	SkipKML         bool
	Log             logger.Logger
	Now             func() time.Time
}

// Result is what a run produced.
type Result struct {
	Run       model.Run
	Standings []model.Standing
}

// Run collects submissions for round number from source, which is a file
// path or an http(s) URL. Failing to load the round, the transcript or to
// save the tables is an error; map, archive, metrics and post failures are
// only logged.
func (p *Pipeline) Run(ctx context.Context, number, source string) (*Result, error) {
	log := p.Log
	if log == nil {
		log = logger.Nop()
	}
	now := p.Now
	if now == nil {
		now = time.Now
	}
	started := now()
	name := round.Name(number)

	roster, err := tables.LoadRoster(p.Paths.Roster())
	if err != nil {
		return nil, fmt.Errorf("loading roster: %w", err)
	}
	if !roster.HasColumn(name) {
		return nil, fmt.Errorf("%s: %w", name, tables.ErrRoundNotInitialized)
	}
	table, err := tables.LoadRound(p.Paths.Round(name))
	if err != nil {
		return nil, err
	}

	lines, err := loadTranscript(ctx, source)
	if err != nil {
		return nil, err
	}
	subs := transcript.Segment(lines)
	log.Info(ctx, "transcript segmented",
		logger.String("source", source),
		logger.Int("lines", len(lines)),
		logger.Int("submissions", len(subs)))

	aliases, err := tables.OpenAliases(p.Paths.Aliases())
	if err != nil {
		return nil, fmt.Errorf("opening aliases: %w", err)
	}
	rec := &reconcile.Reconciler{
		Aliases: aliases,
		Chooser: p.Chooser,
		Confirm: p.Confirmer,
		Log:     log.Named("reconcile"),
	}
	sum, err := rec.Reconcile(ctx, subs, roster, table, name)
	if err != nil {
		return nil, err
	}

	standings := ranking.Run(ctx, table, log.Named("ranking"))

	if err := table.Save(p.Paths.Round(name)); err != nil {
		return nil, fmt.Errorf("saving round table: %w", err)
	}
	if err := roster.Save(p.Paths.Roster()); err != nil {
		return nil, fmt.Errorf("saving roster: %w", err)
	}
	log.Info(ctx, "tables saved",
		logger.String("round", p.Paths.Round(name)),
		logger.String("roster", p.Paths.Roster()))

	target, _ := table.Target()
	res := &Result{
		Run: model.Run{
			Round:       name,
			Target:      target,
			Transcript:  source,
			Segmented:   sum.Segmented,
			Unparseable: sum.Unparseable,
			Approved:    sum.Approved,
			Rejected:    sum.Rejected,
			NewPlayers:  sum.NewPlayers,
			StartedAt:   started.UTC().Format(time.RFC3339),
		},
		Standings: standings,
	}

	if !p.SkipKML {
		if err := kmlexport.Save(p.Paths.KML(name), name, table); err != nil {
			p.stageFailed(ctx, log, metrics.StageKML, err)
		} else {
			log.Info(ctx, "kml saved", logger.String("path", p.Paths.KML(name)))
		}
	}

	if p.Archive != nil {
		if err := p.Archive.WriteRun(&res.Run, standings); err != nil {
			p.stageFailed(ctx, log, metrics.StageArchive, err)
		}
	}

	if p.Poster != nil {
		if err := p.Poster.Post(ctx, round.FormatResults(name, standings)); err != nil {
			p.stageFailed(ctx, log, metrics.StagePost, err)
		}
	}

	if p.Metrics != nil {
		p.Metrics.ObserveRun(res.Run, len(standings), now().Sub(started))
		if p.MetricsTextfile != "" {
			if err := p.Metrics.WriteTextfile(p.MetricsTextfile); err != nil {
				log.Error(ctx, "writing metrics textfile failed", logger.Error(err))
			}
		}
	}

	return res, nil
}

func (p *Pipeline) stageFailed(ctx context.Context, log logger.Logger, stage string, err error) {
	log.Error(ctx, stage+" failed", logger.Error(err))
	if p.Metrics != nil {
		p.Metrics.StageFailed(stage)
	}
}

func loadTranscript(ctx context.Context, source string) ([]string, error) {
	if transcript.IsURL(source) {
		return transcript.Fetch(ctx, nil, source)
	}
	return transcript.Load(source)
}
