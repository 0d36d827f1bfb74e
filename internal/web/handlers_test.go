package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/intelligrit/guess-tally/internal/model"
	"github.com/intelligrit/guess-tally/internal/store"
	"github.com/intelligrit/guess-tally/internal/tables"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	dir := filepath.Join(os.TempDir(), "guess-tally-web-test-"+t.Name())
	os.RemoveAll(dir)
	t.Cleanup(func() { os.RemoveAll(dir) })

	s, err := store.New(dir)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return &Server{Store: s, Tables: tables.Paths{Dir: dir}, Addr: "localhost:0"}
}

func seedRound(t *testing.T, srv *Server) {
	t.Helper()
	run := &model.Run{Round: "Round 1", Target: "48.8584,2.2945", StartedAt: "2025-03-14T21:00:00Z"}
	standings := []model.Standing{
		{Rank: 1, Alias: "Bob", Coordinates: "48.86,2.35", DistanceMi: 2.6, DistanceKm: 4.1843},
		{Rank: 2, Alias: "Alice", Coordinates: "51.5,-0.12", DistanceMi: 212.4, DistanceKm: 341.8267},
	}
	if err := srv.Store.WriteRun(run, standings); err != nil {
		t.Fatalf("writing run: %v", err)
	}
}

func get(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", target, nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHandleRounds(t *testing.T) {
	srv := testServer(t)
	seedRound(t, srv)

	w := get(t, srv, "/api/rounds")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var rounds []model.RoundSummary
	if err := json.NewDecoder(w.Body).Decode(&rounds); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(rounds) != 1 || rounds[0].Participants != 2 {
		t.Errorf("unexpected rounds: %+v", rounds)
	}
}

func TestHandleRoundsEmpty(t *testing.T) {
	srv := testServer(t)

	w := get(t, srv, "/api/rounds")
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("expected '[]', got %q", w.Body.String())
	}
}

func TestHandleResults(t *testing.T) {
	srv := testServer(t)
	seedRound(t, srv)

	tests := []struct {
		name   string
		target string
		code   int
		count  int
	}{
		{"all", "/api/rounds/Round%201/results", http.StatusOK, 2},
		{"top", "/api/rounds/Round%201/results?top=1", http.StatusOK, 1},
		{"invalid top", "/api/rounds/Round%201/results?top=abc", http.StatusBadRequest, 0},
		{"unknown round", "/api/rounds/Round%209/results", http.StatusNotFound, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, srv, tt.target)
			if w.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, w.Code)
			}
			if tt.code != http.StatusOK {
				return
			}
			var standings []model.Standing
			if err := json.NewDecoder(w.Body).Decode(&standings); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if len(standings) != tt.count {
				t.Errorf("expected %d standings, got %d", tt.count, len(standings))
			}
			if standings[0].Alias != "Bob" {
				t.Errorf("expected Bob first, got %q", standings[0].Alias)
			}
		})
	}
}

func TestHandleLeaderboard(t *testing.T) {
	srv := testServer(t)
	seedRound(t, srv)

	w := get(t, srv, "/api/leaderboard")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var board []model.LeaderboardEntry
	if err := json.NewDecoder(w.Body).Decode(&board); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(board) != 2 || board[0].Alias != "Bob" || board[0].Wins != 1 {
		t.Errorf("unexpected leaderboard: %+v", board)
	}

	w = get(t, srv, "/api/leaderboard?min_rounds=2")
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("expected no entries with 2 rounds, got %q", w.Body.String())
	}

	w = get(t, srv, "/api/leaderboard?min_rounds=x")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleKML(t *testing.T) {
	srv := testServer(t)

	tbl := tables.NewRound("48.8584,2.2945")
	tbl.Upsert("Bob", "48.86,2.35")
	if err := tbl.Save(srv.Tables.Round("Round 1")); err != nil {
		t.Fatalf("saving round: %v", err)
	}

	w := get(t, srv, "/api/rounds/Round%201/kml")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/vnd.google-earth.kml+xml" {
		t.Errorf("unexpected content type %q", ct)
	}
	if !strings.Contains(w.Body.String(), "<name>Bob</name>") {
		t.Errorf("expected Bob placemark in %s", w.Body.String())
	}

	w = get(t, srv, "/api/rounds/Round%202/kml")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestHandleKMLRejectsPathNames(t *testing.T) {
	srv := testServer(t)

	// A readable round table one level above Rounds/.
	tbl := tables.NewRound("48.8584,2.2945")
	tbl.Upsert("Bob", "48.86,2.35")
	if err := tbl.Save(filepath.Join(srv.Tables.Dir, "leak.csv")); err != nil {
		t.Fatalf("saving table: %v", err)
	}

	for _, target := range []string{
		"/api/rounds/sub%2FRound%201/kml",
		"/api/rounds/..%5Cleak/kml",
		"/api/rounds/.hidden/kml",
	} {
		w := get(t, srv, target)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", target, w.Code)
		}
	}

	req := httptest.NewRequest("GET", "/api/rounds/x/kml", nil)
	req.SetPathValue("name", "../leak")
	w := httptest.NewRecorder()
	srv.handleKML(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for ../leak, got %d: %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "Bob") {
		t.Errorf("table outside Rounds/ was served: %s", w.Body.String())
	}
}

func TestValidRoundName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Round 1", true},
		{"Round 12 (redo)", true},
		{"", false},
		{"..", false},
		{"../leak", false},
		{"a/b", false},
		{`a\b`, false},
		{".hidden", false},
	}
	for _, tt := range tests {
		if got := validRoundName(tt.name); got != tt.want {
			t.Errorf("validRoundName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestWriteJSONNil(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSON(w, nil)

	if w.Body.String() != "[]" {
		t.Errorf("expected '[]' for nil, got %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}
}
