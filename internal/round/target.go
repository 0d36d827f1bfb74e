// Package round prepares a new round: its tables, its announcement and the
// results post once submissions are ranked.
package round

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/intelligrit/guess-tally/internal/model"
)

// ErrInvalidTarget is returned for coordinate input ParseTarget rejects.
var ErrInvalidTarget = errors.New("invalid coordinate format")

var (
	labeledRe = regexp.MustCompile(`(?i)Latitude:\s*(-?\d+\.?\d*),\s*Longitude:\s*(-?\d+\.?\d*)`)
	bareRe    = regexp.MustCompile(`^\s*(-?\d+\.?\d*)\s*,\s*(-?\d+\.?\d*)\s*$`)
)

// Target is a round's answer. Lat and Lon keep the operator's text so the
// stored cell matches what was typed.
type Target struct {
	Lat string
	Lon string
}

// ParseTarget accepts "Latitude: x, Longitude: y" anywhere in the line or a
// bare "x, y".
func ParseTarget(line string) (Target, error) {
	line = strings.TrimSpace(line)
	m := labeledRe.FindStringSubmatch(line)
	if m == nil {
		m = bareRe.FindStringSubmatch(line)
	}
	if m == nil {
		return Target{}, fmt.Errorf("%w: %q", ErrInvalidTarget, line)
	}
	t := Target{Lat: m[1], Lon: m[2]}
	c, err := t.Coordinate()
	if err != nil {
		return Target{}, err
	}
	if c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
		return Target{}, fmt.Errorf("%w: %q out of range", ErrInvalidTarget, line)
	}
	return t, nil
}

// String is the "lat,lon" cell form.
func (t Target) String() string { return t.Lat + "," + t.Lon }

func (t Target) Coordinate() (model.Coordinate, error) {
	lat, err := strconv.ParseFloat(t.Lat, 64)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("%w: latitude %q", ErrInvalidTarget, t.Lat)
	}
	lon, err := strconv.ParseFloat(t.Lon, 64)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("%w: longitude %q", ErrInvalidTarget, t.Lon)
	}
	return model.Coordinate{Lat: lat, Lon: lon}, nil
}

// Name is the round label used for the roster column and the round folder.
func Name(number string) string {
	return "Round " + strings.TrimSpace(number)
}
