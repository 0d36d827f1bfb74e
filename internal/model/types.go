package model

import "strconv"

// Submission is one author's message reconstructed from a transcript.
type Submission struct {
	Author  string `json:"author"`  // raw display name, before alias resolution
	Message string `json:"message"` // non-header lines, space-joined
}

// Coordinate is a point in signed decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// String renders the coordinate as the "lat,lon" cell format used by the tables.
func (c Coordinate) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lon, 'f', -1, 64)
}

// Standing is one ranked participant of a round.
type Standing struct {
	Rank        int     `json:"rank"`
	Alias       string  `json:"alias"`
	Coordinates string  `json:"coordinates"`
	DistanceMi  float64 `json:"distance_mi"`
	DistanceKm  float64 `json:"distance_km"`
}

// Run records one collect invocation against a round.
type Run struct {
	ID          string `json:"id"`
	Round       string `json:"round"`
	Target      string `json:"target"`
	Transcript  string `json:"transcript"`
	Segmented   int    `json:"segmented"`
	Unparseable int    `json:"unparseable"`
	Approved    int    `json:"approved"`
	Rejected    int    `json:"rejected"`
	NewPlayers  int    `json:"new_players"`
	StartedAt   string `json:"started_at"`
}

// RoundSummary is an archived round with its participant count.
type RoundSummary struct {
	Name         string `json:"name"`
	Target       string `json:"target"`
	Participants int    `json:"participants"`
	ArchivedAt   string `json:"archived_at"`
}

// LeaderboardEntry aggregates an alias's results across archived rounds.
type LeaderboardEntry struct {
	Alias         string  `json:"alias"`
	RoundsPlayed  int     `json:"rounds_played"`
	Wins          int     `json:"wins"`
	AverageMiles  float64 `json:"average_mi"`
	BestMiles     float64 `json:"best_mi"`
	TotalMiles    float64 `json:"total_mi"`
}
