package round

import (
	"fmt"

	"github.com/intelligrit/guess-tally/internal/tables"
)

// LocationRow is the roster row holding each round's target.
const LocationRow = "Location"

// Prepare creates the round table holding only the target and records the
// target in the roster's column for the round. An existing round table is
// replaced.
func Prepare(paths tables.Paths, number string, target Target) (string, error) {
	name := Name(number)

	if err := tables.NewRound(target.String()).Save(paths.Round(name)); err != nil {
		return "", fmt.Errorf("creating round table: %w", err)
	}

	roster, err := tables.LoadRoster(paths.Roster())
	if err != nil {
		return "", fmt.Errorf("loading roster: %w", err)
	}
	roster.EnsureColumn(name)
	roster.AddName(LocationRow)
	if err := roster.Set(LocationRow, name, target.String()); err != nil {
		return "", err
	}
	if err := roster.Save(paths.Roster()); err != nil {
		return "", fmt.Errorf("saving roster: %w", err)
	}
	return name, nil
}
