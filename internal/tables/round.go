package tables

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// TargetName labels row 0 of every round table.
const TargetName = "LOCATION"

var roundHeader = []string{"Name", "Coordinates", "Distance (mi)", "Distance (km)"}

// Row is one line of a round table. Distances are kept as their cell text;
// an empty DistanceMi means the row has not been ranked.
type Row struct {
	Name        string
	Coordinates string
	DistanceMi  string
	DistanceKm  string
}

// Ranked reports whether the row carries a computed distance.
func (r Row) Ranked() bool { return r.DistanceMi != "" }

// Miles parses DistanceMi.
func (r Row) Miles() (float64, error) {
	return strconv.ParseFloat(r.DistanceMi, 64)
}

// SetDistances stores miles rounded to 2 places and km to 4.
func (r *Row) SetDistances(mi, km float64) {
	r.DistanceMi = formatRounded(mi, 2)
	r.DistanceKm = formatRounded(km, 4)
}

// formatRounded rounds v to places and drops trailing zeros, keeping at least
// one decimal digit so whole distances read "5.0" rather than "5".
func formatRounded(v float64, places int) string {
	s := strconv.FormatFloat(v, 'f', places, 64)
	if !strings.Contains(s, ".") {
		return s + ".0"
	}
	s = strings.TrimRight(s, "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	return s
}

// RoundTable holds the submissions of a single round. Rows[0] is the target.
type RoundTable struct {
	Rows []Row
}

// NewRound returns a table holding only the target row.
func NewRound(target string) *RoundTable {
	return &RoundTable{Rows: []Row{{Name: TargetName, Coordinates: target, DistanceMi: "0", DistanceKm: "0"}}}
}

// LoadRound reads a round CSV. A missing file or a table without a target
// row wraps ErrRoundNotInitialized.
func LoadRound(path string) (*RoundTable, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s does not exist", ErrRoundNotInitialized, path)
	}
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: %s has no %s row", ErrRoundNotInitialized, path, TargetName)
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[strings.TrimSpace(name)] = i
	}
	cell := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	if _, ok := cols["Name"]; !ok {
		return nil, fmt.Errorf("%s: missing Name column", path)
	}

	t := &RoundTable{}
	for _, rec := range records[1:] {
		t.Rows = append(t.Rows, Row{
			Name:        cell(rec, "Name"),
			Coordinates: cell(rec, "Coordinates"),
			DistanceMi:  cell(rec, "Distance (mi)"),
			DistanceKm:  cell(rec, "Distance (km)"),
		})
	}
	return t, nil
}

// Save writes the table to path atomically.
func (t *RoundTable) Save(path string) error {
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, roundHeader)
	for _, r := range t.Rows {
		records = append(records, []string{r.Name, r.Coordinates, r.DistanceMi, r.DistanceKm})
	}
	return writeRecords(path, records)
}

// Target returns the coordinates cell of row 0.
func (t *RoundTable) Target() (string, bool) {
	if len(t.Rows) == 0 {
		return "", false
	}
	return t.Rows[0].Coordinates, true
}

// Upsert sets the coordinates of alias, appending a row if needed. Stored
// distances of an updated row are cleared so ranking recomputes them.
func (t *RoundTable) Upsert(alias, coordinates string) {
	for i := 1; i < len(t.Rows); i++ {
		if t.Rows[i].Name == alias {
			t.Rows[i].Coordinates = coordinates
			t.Rows[i].DistanceMi = ""
			t.Rows[i].DistanceKm = ""
			return
		}
	}
	t.Rows = append(t.Rows, Row{Name: alias, Coordinates: coordinates})
}

// Find returns the row for alias, skipping the target row.
func (t *RoundTable) Find(alias string) (Row, bool) {
	for _, r := range t.Rows[min(1, len(t.Rows)):] {
		if r.Name == alias {
			return r, true
		}
	}
	return Row{}, false
}

// Participants returns every row but the target.
func (t *RoundTable) Participants() []Row {
	if len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[1:]
}
