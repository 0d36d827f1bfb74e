package kmlexport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/intelligrit/guess-tally/internal/tables"
)

func sampleRound() *tables.RoundTable {
	t := tables.NewRound("48.8584,2.2945")
	t.Rows = append(t.Rows,
		tables.Row{Name: "Bob", Coordinates: "48.86,2.35", DistanceMi: "2.6", DistanceKm: "4.1843"},
		tables.Row{Name: "Carol"},
	)
	return t
}

func TestBuild(t *testing.T) {
	doc, err := Build("Round 4", sampleRound())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	data, err := Encode(doc)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out := string(data)

	for _, want := range []string{
		"<name>Round 4</name>",
		"<name>LOCATION</name>",
		"<coordinates>2.2945",
		"48.8584",
		"<name>Bob</name>",
		"<coordinates>2.35",
		"Distance: 2.6 mi / 4.1843 km",
		"<styleUrl>#guess</styleUrl>",
		"<color>ffff0000</color>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Carol") {
		t.Error("row without coordinates should be skipped")
	}
	if n := strings.Count(out, "<Placemark>"); n != 2 {
		t.Errorf("placemarks = %d, want 2", n)
	}
}

func TestBuildMalformed(t *testing.T) {
	tbl := tables.NewRound("48.8584,2.2945")
	tbl.Upsert("Bob", "somewhere")
	if _, err := Build("Round 4", tbl); err == nil {
		t.Fatal("expected error for malformed row")
	}
	if _, err := Build("Round 4", tables.NewRound("nope")); err == nil {
		t.Fatal("expected error for malformed target")
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Rounds", "Round 4", "Round 4.kml")
	if err := Save(path, "Round 4", sampleRound()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "<?xml") {
		t.Errorf("unexpected file start: %.40q", data)
	}
}
