package tables

import (
	"fmt"
	"slices"
)

// NameColumn is the key column of the roster.
const NameColumn = "Name"

// Roster is the roster-wide table: one row per alias and one "Round N"
// column per round ever run. Empty cells mean no submission.
type Roster struct {
	header []string
	rows   [][]string
	index  map[string]int
}

// NewRoster returns an empty roster with only the Name column.
func NewRoster() *Roster {
	return &Roster{header: []string{NameColumn}, index: map[string]int{}}
}

// LoadRoster reads roundlist.csv. A missing or empty file yields an empty roster.
func LoadRoster(path string) (*Roster, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return NewRoster(), nil
	}
	r := &Roster{header: records[0], index: map[string]int{}}
	if r.column(NameColumn) < 0 {
		return nil, fmt.Errorf("%s: missing %q column", path, NameColumn)
	}
	for _, rec := range records[1:] {
		r.rows = append(r.rows, pad(rec, len(r.header))[:len(r.header)])
	}
	r.reindex()
	return r, nil
}

// Save writes the roster to path atomically.
func (r *Roster) Save(path string) error {
	records := make([][]string, 0, len(r.rows)+1)
	records = append(records, r.header)
	records = append(records, r.rows...)
	return writeRecords(path, records)
}

func (r *Roster) reindex() {
	name := r.column(NameColumn)
	r.index = make(map[string]int, len(r.rows))
	for i, row := range r.rows {
		if _, dup := r.index[row[name]]; !dup {
			r.index[row[name]] = i
		}
	}
}

func (r *Roster) column(name string) int {
	return slices.Index(r.header, name)
}

// Columns returns the header, Name first.
func (r *Roster) Columns() []string {
	return slices.Clone(r.header)
}

// Names returns every alias in row order.
func (r *Roster) Names() []string {
	name := r.column(NameColumn)
	names := make([]string, len(r.rows))
	for i, row := range r.rows {
		names[i] = row[name]
	}
	return names
}

// HasColumn reports whether the roster has the given column.
func (r *Roster) HasColumn(col string) bool {
	return r.column(col) >= 0
}

// EnsureColumn appends an empty column if it does not exist yet.
func (r *Roster) EnsureColumn(col string) {
	if r.HasColumn(col) {
		return
	}
	r.header = append(r.header, col)
	for i := range r.rows {
		r.rows[i] = append(r.rows[i], "")
	}
}

// HasName reports whether an alias has a row.
func (r *Roster) HasName(alias string) bool {
	_, ok := r.index[alias]
	return ok
}

// AddName appends a row for alias with every other cell empty. Existing
// aliases are left alone.
func (r *Roster) AddName(alias string) {
	if r.HasName(alias) {
		return
	}
	row := make([]string, len(r.header))
	row[r.column(NameColumn)] = alias
	r.rows = append(r.rows, row)
	r.index[alias] = len(r.rows) - 1
}

// Set writes a cell. The alias row and the column must exist.
func (r *Roster) Set(alias, col, value string) error {
	i, ok := r.index[alias]
	if !ok {
		return fmt.Errorf("roster has no row %q", alias)
	}
	c := r.column(col)
	if c < 0 {
		return fmt.Errorf("roster has no column %q", col)
	}
	r.rows[i][c] = value
	return nil
}

// Get reads a cell; missing rows or columns read as empty.
func (r *Roster) Get(alias, col string) string {
	i, ok := r.index[alias]
	c := r.column(col)
	if !ok || c < 0 {
		return ""
	}
	return r.rows[i][c]
}

// Count returns the number of non-empty cells in a column.
func (r *Roster) Count(col string) int {
	c := r.column(col)
	if c < 0 {
		return 0
	}
	n := 0
	for _, row := range r.rows {
		if row[c] != "" {
			n++
		}
	}
	return n
}
