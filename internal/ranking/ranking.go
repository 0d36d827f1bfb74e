// Package ranking computes each participant's distance from the round target
// and orders the round table by it.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/intelligrit/guess-tally/internal/coords"
	"github.com/intelligrit/guess-tally/internal/logger"
	"github.com/intelligrit/guess-tally/internal/model"
	"github.com/intelligrit/guess-tally/internal/tables"
)

// ErrNoTarget is returned when the table has no target row.
var ErrNoTarget = errors.New("round table has no target row")

// ApplyDistances fills the distance cells of every row with coordinates.
// It stops at the first malformed cell; rows before it keep their new values.
func ApplyDistances(t *tables.RoundTable) error {
	cell, ok := t.Target()
	if !ok {
		return ErrNoTarget
	}
	target, err := coords.ParsePair(cell)
	if err != nil {
		return fmt.Errorf("target: %w", err)
	}
	for i := 1; i < len(t.Rows); i++ {
		row := &t.Rows[i]
		if row.Coordinates == "" {
			continue
		}
		p, err := coords.ParsePair(row.Coordinates)
		if err != nil {
			return fmt.Errorf("row %q: %w", row.Name, err)
		}
		mi, km := coords.Distance(target, p)
		row.SetDistances(mi, km)
	}
	return nil
}

// SortByDistance keeps the target first, then ranked rows by ascending miles
// with ties in their prior order, then unranked rows in their prior order.
// The table is untouched if any stored distance fails to parse.
func SortByDistance(t *tables.RoundTable) error {
	if len(t.Rows) == 0 {
		return ErrNoTarget
	}
	type keyed struct {
		row   tables.Row
		miles float64
	}
	var ranked []keyed
	var unranked []tables.Row
	for _, row := range t.Rows[1:] {
		if !row.Ranked() {
			unranked = append(unranked, row)
			continue
		}
		mi, err := row.Miles()
		if err != nil {
			return fmt.Errorf("row %q: distance %q: %w", row.Name, row.DistanceMi, err)
		}
		ranked = append(ranked, keyed{row: row, miles: mi})
	}
	slices.SortStableFunc(ranked, func(a, b keyed) int {
		switch {
		case a.miles < b.miles:
			return -1
		case a.miles > b.miles:
			return 1
		}
		return 0
	})

	rows := make([]tables.Row, 0, len(t.Rows))
	rows = append(rows, t.Rows[0])
	for _, k := range ranked {
		rows = append(rows, k.row)
	}
	rows = append(rows, unranked...)
	t.Rows = rows
	return nil
}

// Standings lists the ranked rows in table order, numbered from 1.
func Standings(t *tables.RoundTable) []model.Standing {
	var out []model.Standing
	for _, row := range t.Participants() {
		if !row.Ranked() {
			continue
		}
		mi, err := row.Miles()
		if err != nil {
			continue
		}
		km, _ := strconv.ParseFloat(row.DistanceKm, 64)
		out = append(out, model.Standing{
			Rank:        len(out) + 1,
			Alias:       row.Name,
			Coordinates: row.Coordinates,
			DistanceMi:  mi,
			DistanceKm:  km,
		})
	}
	return out
}

// Run computes distances then sorts. Each step's failure is logged and does
// not prevent the other; the table is always left saveable.
func Run(ctx context.Context, t *tables.RoundTable, log logger.Logger) []model.Standing {
	if log == nil {
		log = logger.Nop()
	}
	if err := ApplyDistances(t); err != nil {
		log.Error(ctx, "distance calculation failed", logger.Error(err))
	}
	if err := SortByDistance(t); err != nil {
		log.Error(ctx, "sorting by distance failed", logger.Error(err))
	}
	standings := Standings(t)
	log.Debug(ctx, "round ranked", logger.Int("ranked", len(standings)), logger.Int("rows", len(t.Rows)))
	return standings
}
