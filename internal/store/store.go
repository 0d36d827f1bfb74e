package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/google/uuid"

	"github.com/intelligrit/guess-tally/internal/model"
)

// FileName is the archive database inside the data directory.
const FileName = "guess-tally.duckdb"

// Store archives collect runs and their ranked results in DuckDB. The CSV
// tables stay the source of truth; the archive feeds status, leaderboard
// and the web API.
type Store struct {
	DB      *sql.DB
	DataDir string
}

// New opens (or creates) a DuckDB database in the given data directory.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, FileName)
	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening duckdb: %w", err)
	}

	s := &Store{DB: db, DataDir: dataDir}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS rounds (
			name TEXT PRIMARY KEY,
			target TEXT NOT NULL,
			archived_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			round_name TEXT NOT NULL,
			target TEXT NOT NULL,
			transcript TEXT,
			segmented INTEGER NOT NULL,
			unparseable INTEGER NOT NULL,
			approved INTEGER NOT NULL,
			rejected INTEGER NOT NULL,
			new_players INTEGER NOT NULL,
			started_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			round_name TEXT NOT NULL,
			place INTEGER NOT NULL,
			alias TEXT NOT NULL,
			coordinates TEXT NOT NULL,
			distance_mi DOUBLE NOT NULL,
			distance_km DOUBLE NOT NULL,
			PRIMARY KEY (round_name, alias)
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.DB.Exec(stmt); err != nil {
			return fmt.Errorf("executing migration %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// WriteRun records a run and replaces the round's archived results with
// standings. A run without an ID gets a fresh one.
func (s *Store) WriteRun(run *model.Run, standings []model.Standing) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("INSERT OR REPLACE INTO rounds (name, target, archived_at) VALUES (?, ?, ?)",
		run.Round, run.Target, run.StartedAt); err != nil {
		return fmt.Errorf("archiving round %s: %w", run.Round, err)
	}

	if _, err := tx.Exec(`INSERT INTO runs (id, round_name, target, transcript, segmented, unparseable, approved, rejected, new_players, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Round, run.Target, run.Transcript, run.Segmented, run.Unparseable, run.Approved, run.Rejected, run.NewPlayers, run.StartedAt); err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}

	if _, err := tx.Exec("DELETE FROM results WHERE round_name = ?", run.Round); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO results (round_name, place, alias, coordinates, distance_mi, distance_km)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, st := range standings {
		if _, err := stmt.Exec(run.Round, st.Rank, st.Alias, st.Coordinates, st.DistanceMi, st.DistanceKm); err != nil {
			return fmt.Errorf("inserting result %s: %w", st.Alias, err)
		}
	}

	if _, err := tx.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('last_run_at', ?)", run.StartedAt); err != nil {
		return err
	}

	return tx.Commit()
}

// ReadRounds lists archived rounds with their participant counts.
func (s *Store) ReadRounds() ([]model.RoundSummary, error) {
	rows, err := s.DB.Query(`SELECT r.name, r.target, COUNT(res.alias), r.archived_at
		FROM rounds r LEFT JOIN results res ON res.round_name = r.name
		GROUP BY r.name, r.target, r.archived_at
		ORDER BY r.archived_at, r.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []model.RoundSummary
	for rows.Next() {
		var r model.RoundSummary
		if err := rows.Scan(&r.Name, &r.Target, &r.Participants, &r.ArchivedAt); err != nil {
			return nil, err
		}
		rounds = append(rounds, r)
	}
	return rounds, rows.Err()
}

// RoundExists checks if a round has been archived.
func (s *Store) RoundExists(round string) bool {
	var n int
	s.DB.QueryRow("SELECT 1 FROM rounds WHERE name = ?", round).Scan(&n)
	return n == 1
}

// ReadResults loads a round's standings in rank order.
func (s *Store) ReadResults(round string) ([]model.Standing, error) {
	rows, err := s.DB.Query(`SELECT place, alias, coordinates, distance_mi, distance_km
		FROM results WHERE round_name = ? ORDER BY place`, round)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var standings []model.Standing
	for rows.Next() {
		var st model.Standing
		if err := rows.Scan(&st.Rank, &st.Alias, &st.Coordinates, &st.DistanceMi, &st.DistanceKm); err != nil {
			return nil, err
		}
		standings = append(standings, st)
	}
	return standings, rows.Err()
}

// ReadRuns loads every run of a round, oldest first.
func (s *Store) ReadRuns(round string) ([]model.Run, error) {
	rows, err := s.DB.Query(`SELECT id, round_name, target, transcript, segmented, unparseable, approved, rejected, new_players, started_at
		FROM runs WHERE round_name = ? ORDER BY started_at`, round)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var transcript sql.NullString
		if err := rows.Scan(&r.ID, &r.Round, &r.Target, &transcript, &r.Segmented, &r.Unparseable, &r.Approved, &r.Rejected, &r.NewPlayers, &r.StartedAt); err != nil {
			return nil, err
		}
		r.Transcript = transcript.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Leaderboard aggregates results per alias: most wins first, then lowest
// average distance.
func (s *Store) Leaderboard() ([]model.LeaderboardEntry, error) {
	rows, err := s.DB.Query(`SELECT alias,
			COUNT(*) AS played,
			COUNT(*) FILTER (WHERE place = 1) AS wins,
			AVG(distance_mi) AS avg_mi,
			MIN(distance_mi) AS best_mi,
			SUM(distance_mi) AS total_mi
		FROM results
		GROUP BY alias
		ORDER BY wins DESC, avg_mi ASC, alias`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.LeaderboardEntry
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.Alias, &e.RoundsPlayed, &e.Wins, &e.AverageMiles, &e.BestMiles, &e.TotalMiles); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LastRunAt returns the start time of the most recent archived run.
func (s *Store) LastRunAt() string {
	var v sql.NullString
	s.DB.QueryRow("SELECT value FROM meta WHERE key = 'last_run_at'").Scan(&v)
	return v.String
}

// RoundCount returns the number of archived rounds.
func (s *Store) RoundCount() int {
	var n int
	s.DB.QueryRow("SELECT COUNT(*) FROM rounds").Scan(&n)
	return n
}

// RunCount returns the number of archived runs.
func (s *Store) RunCount() int {
	var n int
	s.DB.QueryRow("SELECT COUNT(*) FROM runs").Scan(&n)
	return n
}

// PlayerCount returns the number of distinct aliases with results.
func (s *Store) PlayerCount() int {
	var n int
	s.DB.QueryRow("SELECT COUNT(DISTINCT alias) FROM results").Scan(&n)
	return n
}

// ResultCountByRound returns ranked participant counts per round.
func (s *Store) ResultCountByRound() map[string]int {
	m := make(map[string]int)
	rows, err := s.DB.Query("SELECT round_name, COUNT(*) FROM results GROUP BY round_name ORDER BY round_name")
	if err != nil {
		return m
	}
	defer rows.Close()
	for rows.Next() {
		var round string
		var cnt int
		rows.Scan(&round, &cnt)
		m[round] = cnt
	}
	return m
}
