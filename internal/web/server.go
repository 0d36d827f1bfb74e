package web

import (
	"context"
	"net/http"

	"github.com/intelligrit/guess-tally/internal/logger"
	"github.com/intelligrit/guess-tally/internal/store"
	"github.com/intelligrit/guess-tally/internal/tables"
)

// Server serves archived round results as JSON and round maps as KML.
type Server struct {
	Store  *store.Store
	Tables tables.Paths
	Addr   string
	Log    logger.Logger
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/rounds", s.handleRounds)
	mux.HandleFunc("GET /api/rounds/{name}/results", s.handleResults)
	mux.HandleFunc("GET /api/rounds/{name}/kml", s.handleKML)
	mux.HandleFunc("GET /api/leaderboard", s.handleLeaderboard)
	return mux
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	log := s.Log
	if log == nil {
		log = logger.Nop()
	}
	log.Info(context.Background(), "serving", logger.String("addr", "http://"+s.Addr))
	return http.ListenAndServe(s.Addr, s.Handler())
}
