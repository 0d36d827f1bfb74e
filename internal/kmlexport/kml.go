// Package kmlexport renders a round table as a KML map of guesses.
package kmlexport

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/twpayne/go-kml/v3"

	"github.com/intelligrit/guess-tally/internal/coords"
	"github.com/intelligrit/guess-tally/internal/tables"
)

const styleID = "guess"

var blue = color.RGBA{R: 0, G: 0, B: 255, A: 255}

// Build returns a document with the target placemark followed by one
// placemark per row with coordinates. Rows with malformed coordinates are
// an error.
func Build(roundName string, t *tables.RoundTable) (*kml.KMLElement, error) {
	cell, ok := t.Target()
	if !ok {
		return nil, fmt.Errorf("round %q has no target row", roundName)
	}
	target, err := coords.ParsePair(cell)
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}

	style := kml.SharedStyle(styleID, kml.IconStyle(kml.Color(blue)))
	children := []kml.Element{
		kml.Name(roundName),
		style,
		kml.Placemark(
			kml.Name(tables.TargetName),
			kml.StyleURL(style.URL()),
			kml.Point(kml.Coordinates(kml.Coordinate{Lon: target.Lon, Lat: target.Lat})),
		),
	}

	for _, row := range t.Participants() {
		if row.Coordinates == "" {
			continue
		}
		p, err := coords.ParsePair(row.Coordinates)
		if err != nil {
			return nil, fmt.Errorf("row %q: %w", row.Name, err)
		}
		desc := fmt.Sprintf("Coordinates: %v, %v\nDistance: %s mi / %s km", p.Lat, p.Lon, row.DistanceMi, row.DistanceKm)
		children = append(children, kml.Placemark(
			kml.Name(row.Name),
			kml.Description(desc),
			kml.StyleURL(style.URL()),
			kml.Point(kml.Coordinates(kml.Coordinate{Lon: p.Lon, Lat: p.Lat})),
		))
	}

	return kml.KML(kml.Document(children...)), nil
}

// Encode writes the document as indented XML.
func Encode(doc *kml.KMLElement) ([]byte, error) {
	var buf bytes.Buffer
	if err := doc.WriteIndent(&buf, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save builds and atomically writes the KML file for a round.
func Save(path, roundName string, t *tables.RoundTable) error {
	doc, err := Build(roundName, t)
	if err != nil {
		return err
	}
	data, err := Encode(doc)
	if err != nil {
		return fmt.Errorf("encoding kml: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return renameio.WriteFile(path, data, 0o644)
}
