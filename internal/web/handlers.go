package web

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/intelligrit/guess-tally/internal/kmlexport"
	"github.com/intelligrit/guess-tally/internal/model"
	"github.com/intelligrit/guess-tally/internal/tables"
)

func (s *Server) handleRounds(w http.ResponseWriter, r *http.Request) {
	rounds, err := s.Store.ReadRounds()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, rounds)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !s.Store.RoundExists(name) {
		http.Error(w, "round not found", http.StatusNotFound)
		return
	}
	standings, err := s.Store.ReadResults(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// top=N keeps only the first N places
	topStr := r.URL.Query().Get("top")
	if topStr != "" {
		top, err := strconv.Atoi(topStr)
		if err != nil || top < 0 {
			http.Error(w, "invalid 'top' parameter", http.StatusBadRequest)
			return
		}
		var filtered []model.Standing
		for _, st := range standings {
			if st.Rank <= top {
				filtered = append(filtered, st)
			}
		}
		writeJSON(w, filtered)
		return
	}

	writeJSON(w, standings)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := s.Store.Leaderboard()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	minStr := r.URL.Query().Get("min_rounds")
	if minStr != "" {
		minRounds, err := strconv.Atoi(minStr)
		if err != nil {
			http.Error(w, "invalid 'min_rounds' parameter", http.StatusBadRequest)
			return
		}
		var filtered []model.LeaderboardEntry
		for _, e := range board {
			if e.RoundsPlayed >= minRounds {
				filtered = append(filtered, e)
			}
		}
		writeJSON(w, filtered)
		return
	}

	writeJSON(w, board)
}

func (s *Server) handleKML(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !validRoundName(name) {
		http.Error(w, "round not found", http.StatusNotFound)
		return
	}
	t, err := tables.LoadRound(s.Tables.Round(name))
	if errors.Is(err, tables.ErrRoundNotInitialized) {
		http.Error(w, "round not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	doc, err := kmlexport.Build(name, t)
	if err != nil {
		http.Error(w, "round table has unreadable coordinates", http.StatusUnprocessableEntity)
		return
	}
	data, err := kmlexport.Encode(doc)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.google-earth.kml+xml")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name + ".kml"}))
	_, _ = w.Write(data)
}

// validRoundName accepts only names that stay a single entry under Rounds/.
func validRoundName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") || strings.Contains(name, "..") {
		return false
	}
	if strings.ContainsAny(name, `/\`) {
		return false
	}
	return filepath.Base(name) == name
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	// Wildcard CORS: the API is read-only and meant for local dashboards.
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if isNil(v) {
		_, _ = w.Write([]byte("[]"))
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// isNil treats nil slices as empty lists.
func isNil(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case []model.Standing:
		return v == nil
	case []model.RoundSummary:
		return v == nil
	case []model.LeaderboardEntry:
		return v == nil
	}
	return false
}
