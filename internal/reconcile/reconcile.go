// Package reconcile turns segmented submissions into roster and round table
// updates, resolving aliases and asking for approval along the way.
package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/intelligrit/guess-tally/internal/coords"
	"github.com/intelligrit/guess-tally/internal/logger"
	"github.com/intelligrit/guess-tally/internal/model"
	"github.com/intelligrit/guess-tally/internal/tables"
)

// AliasStore maps chat authors to aliases. Define must be visible to the
// next Lookup.
type AliasStore interface {
	Lookup(author string) (string, bool)
	Define(author, alias string) error
}

// AliasChooser picks the alias for an author seen for the first time.
type AliasChooser interface {
	ChooseAlias(author string) (string, error)
}

// Confirmer approves or rejects one submission.
type Confirmer interface {
	Confirm(r Review) (bool, error)
}

// Review is what a Confirmer is shown.
type Review struct {
	Author     string
	Alias      string
	Message    string
	Coordinate model.Coordinate
	Notation   coords.Notation
	NewPlayer  bool
}

// Summary counts the outcome of one Reconcile call.
type Summary struct {
	Segmented   int
	Unparseable int
	Approved    int
	Rejected    int
	NewPlayers  int
}

// Reconciler applies submissions to the tables.
type Reconciler struct {
	Aliases AliasStore
	Chooser AliasChooser
	Confirm Confirmer
	Log     logger.Logger
}

// Reconcile walks subs in order. Approved submissions update the roster
// cell for roundName and the round table row of the alias; a later approval
// for the same alias replaces an earlier one. Nothing is mutated if the
// round has not been prepared.
func (r *Reconciler) Reconcile(ctx context.Context, subs []model.Submission, roster *tables.Roster, round *tables.RoundTable, roundName string) (Summary, error) {
	var sum Summary
	if roster == nil || !roster.HasColumn(roundName) {
		return sum, fmt.Errorf("%w: roster has no %q column", tables.ErrRoundNotInitialized, roundName)
	}
	if round == nil || len(round.Rows) == 0 || round.Rows[0].Name != tables.TargetName {
		return sum, fmt.Errorf("%w: round table for %q has no %s row", tables.ErrRoundNotInitialized, roundName, tables.TargetName)
	}

	log := r.Log
	if log == nil {
		log = logger.Nop()
	}
	sum.Segmented = len(subs)

	for _, sub := range subs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		author := strings.TrimSpace(sub.Author)
		alias, err := r.resolve(author)
		if err != nil {
			return sum, fmt.Errorf("resolving alias for %q: %w", author, err)
		}

		m := coords.Recognize(sub.Message)
		if !m.OK() {
			sum.Unparseable++
			log.Debug(ctx, "no coordinates in submission",
				logger.String("author", author),
				logger.String("message", sub.Message))
			continue
		}

		review := Review{
			Author:     author,
			Alias:      alias,
			Message:    sub.Message,
			Coordinate: m.Coordinate,
			Notation:   m.Notation,
			NewPlayer:  !roster.HasName(alias),
		}
		ok, err := r.Confirm.Confirm(review)
		if err != nil {
			return sum, fmt.Errorf("confirming %q: %w", alias, err)
		}
		if !ok {
			sum.Rejected++
			continue
		}

		if review.NewPlayer {
			roster.AddName(alias)
			sum.NewPlayers++
		}
		cell := m.Coordinate.String()
		if err := roster.Set(alias, roundName, cell); err != nil {
			return sum, err
		}
		round.Upsert(alias, cell)
		sum.Approved++
		log.Debug(ctx, "submission approved",
			logger.String("alias", alias),
			logger.String("coordinates", cell),
			logger.String("notation", m.Notation.String()))
	}
	return sum, nil
}

// resolve returns the stored alias for author, defining one on first sight.
// An empty choice falls back to the author name.
func (r *Reconciler) resolve(author string) (string, error) {
	if alias, ok := r.Aliases.Lookup(author); ok {
		return alias, nil
	}
	alias, err := r.Chooser.ChooseAlias(author)
	if err != nil {
		return "", err
	}
	alias = strings.TrimSpace(alias)
	if alias == "" {
		alias = author
	}
	if err := r.Aliases.Define(author, alias); err != nil {
		return "", err
	}
	return alias, nil
}
