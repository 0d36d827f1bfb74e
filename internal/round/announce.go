package round

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/intelligrit/guess-tally/internal/config"
	"github.com/intelligrit/guess-tally/internal/model"
)

// ErrInvalidTime is returned when an end time cannot be parsed.
var ErrInvalidTime = errors.New("unrecognized time")

// CountryFlag turns a two-letter country code into its flag emoji. Anything
// else yields "".
func CountryFlag(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 2 {
		return ""
	}
	var b strings.Builder
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return ""
		}
		b.WriteRune(r - 'A' + 0x1F1E6)
	}
	return b.String()
}

// LoadLocation resolves a zone name. Unknown names fall back to UTC and
// report false.
func LoadLocation(name string) (*time.Location, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC, true
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, false
	}
	return loc, true
}

var clockLayouts = []string{"15:04", "15:04:05", "3:04PM", "3:04 PM", "3PM", "3 PM"}

// ParseEnd interprets an end time in loc. Bare clock times fall on now's
// date in loc; anything else goes through dateparse, with zone-less inputs
// read in loc.
func ParseEnd(input string, loc *time.Location, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidTime)
	}
	clock := strings.ToUpper(input)
	for _, layout := range clockLayouts {
		t, err := time.ParseInLocation(layout, clock, loc)
		if err != nil {
			continue
		}
		y, m, d := now.In(loc).Date()
		return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, loc), nil
	}
	t, err := dateparse.ParseIn(input, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidTime, input, err)
	}
	return t, nil
}

// DiscordTimestamp renders t as a Discord timestamp tag, e.g. <t:1700000000:F>.
func DiscordTimestamp(t time.Time, style string) string {
	if style == "" {
		style = "F"
	}
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), style)
}

// Link is a markdown link appended to an announcement.
type Link struct {
	Label string
	URL   string
}

func (l Link) String() string { return "[" + l.Label + "](" + l.URL + ")" }

// LinksFrom returns the configured links in announcement order. Links
// without a URL are omitted and blank labels get defaults.
func LinksFrom(cfg config.LinksConfig) []Link {
	var links []Link
	add := func(u, label, fallback string) {
		u = strings.TrimSpace(u)
		if u == "" {
			return
		}
		if label = strings.TrimSpace(label); label == "" {
			label = fallback
		}
		links = append(links, Link{Label: label, URL: u})
	}
	add(cfg.SubmissionTrackerURL, cfg.SubmissionTrackerLabel, "Submission Tracker")
	add(cfg.LeaderboardURL, cfg.LeaderboardLabel, "Leaderboard")
	add(cfg.RulesURL, cfg.RulesLabel, "Rules")
	return links
}

// Announcement is the message posted when a round opens.
type Announcement struct {
	Number   string
	Location string
	Country  string
	Target   Target
	Ends     time.Time
	Links    []Link
}

// MapsURL links to the target on Google Maps.
func (t Target) MapsURL() string {
	return "https://www.google.com/maps/place/" + url.PathEscape(t.String()) +
		"/@" + t.Lat + "," + t.Lon + ",14z"
}

// Format renders the announcement as Discord markdown.
func (a Announcement) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s: %s %s, at [%s](%s)\n", Name(a.Number), a.Location, CountryFlag(a.Country), a.Target, a.Target.MapsURL())
	fmt.Fprintf(&b, "Round ends %s\n", DiscordTimestamp(a.Ends, "F"))
	for _, l := range a.Links {
		b.WriteString(l.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatResults renders the ranked standings of a round for posting.
func FormatResults(roundName string, standings []model.Standing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s results\n", roundName)
	if len(standings) == 0 {
		b.WriteString("No ranked submissions.\n")
		return b.String()
	}
	for _, s := range standings {
		fmt.Fprintf(&b, "%s %s: %s mi / %s km\n", place(s.Rank), s.Alias, trimFloat(s.DistanceMi), trimFloat(s.DistanceKm))
	}
	return b.String()
}

func place(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return fmt.Sprintf("%d.", rank)
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.4f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
