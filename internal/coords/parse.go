// Package coords recognizes human-entered geographic coordinates and
// measures great-circle distances between them.
package coords

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/intelligrit/guess-tally/internal/model"
)

// ErrMalformedPair is returned by ParsePair for cells that are not "lat,lon".
var ErrMalformedPair = errors.New("malformed coordinate pair")

// Notation identifies which pattern recognized a coordinate.
type Notation int

const (
	NotationNone Notation = iota
	NotationDMS
	NotationHybrid
	NotationDecimal
)

func (n Notation) String() string {
	switch n {
	case NotationDMS:
		return "dms"
	case NotationHybrid:
		return "hybrid"
	case NotationDecimal:
		return "decimal"
	default:
		return "none"
	}
}

// Match is the result of Recognize. Coordinate is meaningful only when
// Notation is not NotationNone.
type Match struct {
	Notation   Notation
	Coordinate model.Coordinate
}

// OK reports whether a coordinate was recognized.
func (m Match) OK() bool { return m.Notation != NotationNone }

var forwardedRe = regexp.MustCompile(`(?i)forwarded`)

type pattern struct {
	notation Notation
	re       *regexp.Regexp
	extract  func(groups []string) (model.Coordinate, bool)
}

// patterns are tried in order; the first one that matches and extracts wins.
var patterns = []pattern{
	{
		notation: NotationDMS,
		re: regexp.MustCompile(`(?i)(\d+)\s*°\s*(\d+)\s*['′’‘]\s*(\d+(?:\.\d+)?)\s*["″”“]?\s*([NS])` +
			`[\s,]+` +
			`(\d+)\s*°\s*(\d+)\s*['′’‘]\s*(\d+(?:\.\d+)?)\s*["″”“]?\s*([EW])`),
		extract: extractDMS,
	},
	{
		notation: NotationHybrid,
		re:       regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*°\s*([NS])[\s,]+(\d+(?:\.\d+)?)\s*°\s*([EW])`),
		extract:  extractHybrid,
	},
	{
		notation: NotationDecimal,
		re:       regexp.MustCompile(`(?i)(-?\d+\.\d+)\s*°?\s*([NS]\b)?,?\s*(-?\d+\.\d+)\s*°?\s*([EW]\b)?`),
		extract:  extractDecimal,
	},
}

// Recognize finds the first coordinate pair in free text. Any occurrence of
// the word "forwarded" is removed first since chat exports mark forwarded
// messages inline.
func Recognize(text string) Match {
	text = strings.TrimSpace(forwardedRe.ReplaceAllString(text, ""))
	for _, p := range patterns {
		groups := p.re.FindStringSubmatch(text)
		if groups == nil {
			continue
		}
		c, ok := p.extract(groups[1:])
		if !ok {
			continue
		}
		return Match{Notation: p.notation, Coordinate: c}
	}
	return Match{}
}

// Parse is Recognize without the notation tag.
func Parse(text string) (model.Coordinate, bool) {
	m := Recognize(text)
	return m.Coordinate, m.OK()
}

func extractDMS(g []string) (model.Coordinate, bool) {
	lat, ok := dmsToDecimal(g[0], g[1], g[2], g[3])
	if !ok {
		return model.Coordinate{}, false
	}
	lon, ok := dmsToDecimal(g[4], g[5], g[6], g[7])
	if !ok {
		return model.Coordinate{}, false
	}
	return checked(lat, lon)
}

func extractHybrid(g []string) (model.Coordinate, bool) {
	lat, ok := dmsToDecimal(g[0], "", "", g[1])
	if !ok {
		return model.Coordinate{}, false
	}
	lon, ok := dmsToDecimal(g[2], "", "", g[3])
	if !ok {
		return model.Coordinate{}, false
	}
	return checked(lat, lon)
}

// extractDecimal applies hemisphere letters only when both are present;
// with one or none the literal signed values stand.
func extractDecimal(g []string) (model.Coordinate, bool) {
	lat, err := strconv.ParseFloat(g[0], 64)
	if err != nil {
		return model.Coordinate{}, false
	}
	lon, err := strconv.ParseFloat(g[2], 64)
	if err != nil {
		return model.Coordinate{}, false
	}
	latDir, lonDir := strings.ToUpper(g[1]), strings.ToUpper(g[3])
	if latDir != "" && lonDir != "" {
		if latDir == "S" {
			lat = -abs(lat)
		}
		if lonDir == "W" {
			lon = -abs(lon)
		}
	}
	return checked(lat, lon)
}

// dmsToDecimal converts degrees/minutes/seconds to decimal degrees. Empty
// minutes or seconds count as zero. S and W force a negative result.
func dmsToDecimal(degrees, minutes, seconds, direction string) (float64, bool) {
	var parts [3]float64
	for i, s := range []string{degrees, minutes, seconds} {
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		parts[i] = v
	}
	dec := parts[0] + parts[1]/60.0 + parts[2]/3600.0
	switch strings.ToUpper(direction) {
	case "S", "W":
		dec = -abs(dec)
	}
	return dec, true
}

func checked(lat, lon float64) (model.Coordinate, bool) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return model.Coordinate{}, false
	}
	return model.Coordinate{Lat: lat, Lon: lon}, true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// ParsePair parses a stored "lat,lon" cell.
func ParsePair(s string) (model.Coordinate, error) {
	latStr, lonStr, found := strings.Cut(strings.TrimSpace(s), ",")
	if !found {
		return model.Coordinate{}, fmt.Errorf("%w: %q", ErrMalformedPair, s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("%w: latitude %q", ErrMalformedPair, latStr)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("%w: longitude %q", ErrMalformedPair, lonStr)
	}
	return model.Coordinate{Lat: lat, Lon: lon}, nil
}
