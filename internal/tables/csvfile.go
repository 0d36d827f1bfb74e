// Package tables persists the roster, per-round results and alias mapping
// as CSV files.
package tables

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// ErrRoundNotInitialized means the round CSV or the roster column for the
// round is missing; run prep-round first.
var ErrRoundNotInitialized = errors.New("round not initialized")

// Paths locates every table under a data directory.
type Paths struct {
	Dir string
}

func (p Paths) Roster() string  { return filepath.Join(p.Dir, "roundlist.csv") }
func (p Paths) Aliases() string { return filepath.Join(p.Dir, "aliases.csv") }

// RoundDir is Rounds/<round>.
func (p Paths) RoundDir(round string) string {
	return filepath.Join(p.Dir, "Rounds", round)
}

// Round is Rounds/<round>/<round>.csv.
func (p Paths) Round(round string) string {
	return filepath.Join(p.RoundDir(round), round+".csv")
}

// KML is Rounds/<round>/<round>.kml.
func (p Paths) KML(round string) string {
	return filepath.Join(p.RoundDir(round), round+".kml")
}

// Archive is the run archive database.
func (p Paths) Archive() string {
	return filepath.Join(p.Dir, "guess-tally.duckdb")
}

// readRecords reads a CSV file. A missing or empty file yields no records.
func readRecords(path string) ([][]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// writeRecords replaces path atomically with the given records.
func writeRecords(path string, records [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating dir for %s: %w", path, err)
	}
	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// terminateLastLine writes a newline when a hand-edited file ends without
// one, so the next appended record starts on its own line.
func terminateLastLine(f *os.File) error {
	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return err
	}
	if last[0] == '\n' {
		return nil
	}
	_, err = f.Write([]byte("\n"))
	return err
}

func appendRecord(w io.Writer, rec []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rec); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// pad returns rec extended with empty cells up to n fields.
func pad(rec []string, n int) []string {
	for len(rec) < n {
		rec = append(rec, "")
	}
	return rec
}
