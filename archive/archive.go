/* archive.go
 * Contains the season history archive. Every snapshot with new content gets its matchups and each team's strength
 * of schedule written to a local sqlite database so past weeks can be looked up after the live data has moved on
 */

package archive

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"nfl-stats-lab/api/shared"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS recorded_snapshots (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    digest TEXT NOT NULL UNIQUE,
    version INTEGER NOT NULL,
    week INTEGER NOT NULL,
    recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS matchups (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    version INTEGER NOT NULL,
    week INTEGER NOT NULL,
    home_id TEXT NOT NULL,
    away_id TEXT NOT NULL,
    home_wins INTEGER,
    home_losses INTEGER,
    away_wins INTEGER,
    away_losses INTEGER
);
CREATE TABLE IF NOT EXISTS team_sos (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    version INTEGER NOT NULL,
    week INTEGER NOT NULL,
    team_id TEXT NOT NULL,
    wins INTEGER,
    losses INTEGER,
    sos REAL
);
CREATE INDEX IF NOT EXISTS idx_matchups_home ON matchups(home_id);
CREATE INDEX IF NOT EXISTS idx_matchups_away ON matchups(away_id);
`

// MatchupRecord is one archived matchup
type MatchupRecord struct {
	ID         int64  `json:"id"`
	Version    uint64 `json:"version"`
	Week       int    `json:"week"`
	HomeID     string `json:"home_id"`
	AwayID     string `json:"away_id"`
	HomeWins   int    `json:"home_wins"`
	HomeLosses int    `json:"home_losses"`
	AwayWins   int    `json:"away_wins"`
	AwayLosses int    `json:"away_losses"`
}

// Archive wraps the sqlite database
type Archive struct {
	db *sql.DB
}

// Open opens (or creates) the archive at path and applies the schema. ":memory:" gives a throwaway archive
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	// sqlite allows one writer, and an in memory database only exists on its own connection
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply archive schema: %w", err)
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// digestTeam is the part of an enriched team that identifies what was archived. Grades are not archived
type digestTeam struct {
	ID     string  `json:"id"`
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
	SOS    float64 `json:"sos"`
}

// snapshotDigest hashes the archived content of a snapshot. The feed version restarts at 1 with the process, so it
// cannot tell two snapshots apart across restarts
func snapshotDigest(week int, matchups []shared.Matchup, teams []shared.EnrichedTeam) (string, error) {
	content := struct {
		Week     int              `json:"week"`
		Matchups []shared.Matchup `json:"matchups"`
		Teams    []digestTeam     `json:"teams"`
	}{Week: week, Matchups: matchups}
	for _, t := range teams {
		content.Teams = append(content.Teams, digestTeam{ID: t.ID, Wins: t.Wins, Losses: t.Losses, SOS: t.SOS})
	}

	raw, err := json.Marshal(content)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot for digest: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// RecordSnapshot stores a snapshot's matchups and team SOS rows in one transaction
// Preconditions: Receives the week and snapshot version, plus the matchups and enriched teams derived from it
// Postconditions: Returns true if the rows were written, false if the same content was already recorded, including
// by an earlier run against the same database
func (a *Archive) RecordSnapshot(ctx context.Context, week int, version uint64, matchups []shared.Matchup, teams []shared.EnrichedTeam) (bool, error) {
	digest, err := snapshotDigest(week, matchups, teams)
	if err != nil {
		return false, err
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin archive transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO recorded_snapshots (digest, version, week) VALUES (?, ?, ?)`,
		digest, int64(version), week)
	if err != nil {
		return false, fmt.Errorf("failed to record snapshot %d: %w", version, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return false, err
	} else if n == 0 {
		return false, nil
	}

	for _, m := range matchups {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO matchups (version, week, home_id, away_id, home_wins, home_losses, away_wins, away_losses)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			int64(version), week, m.Home.ID, m.Away.ID, m.Home.Wins, m.Home.Losses, m.Away.Wins, m.Away.Losses)
		if err != nil {
			return false, fmt.Errorf("failed to record matchup %s-%s: %w", m.Home.ID, m.Away.ID, err)
		}
	}

	for _, t := range teams {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO team_sos (version, week, team_id, wins, losses, sos) VALUES (?, ?, ?, ?, ?, ?)`,
			int64(version), week, t.ID, t.Wins, t.Losses, t.SOS)
		if err != nil {
			return false, fmt.Errorf("failed to record sos for %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit snapshot %d: %w", version, err)
	}
	return true, nil
}

// MatchupHistory returns every archived matchup a team played in, newest week first
func (a *Archive) MatchupHistory(ctx context.Context, teamID string) ([]MatchupRecord, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, version, week, home_id, away_id, home_wins, home_losses, away_wins, away_losses
		 FROM matchups WHERE home_id = ? OR away_id = ?
		 ORDER BY week DESC, id DESC`, teamID, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matchup history for %s: %w", teamID, err)
	}
	defer rows.Close()

	var records []MatchupRecord
	for rows.Next() {
		var r MatchupRecord
		var version int64
		if err := rows.Scan(&r.ID, &version, &r.Week, &r.HomeID, &r.AwayID, &r.HomeWins, &r.HomeLosses, &r.AwayWins, &r.AwayLosses); err != nil {
			return nil, fmt.Errorf("failed to scan matchup history: %w", err)
		}
		r.Version = uint64(version)
		records = append(records, r)
	}
	return records, rows.Err()
}

// SOSHistory returns a team's archived strength of schedule per recorded version, newest first
func (a *Archive) SOSHistory(ctx context.Context, teamID string) ([]float64, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT sos FROM team_sos WHERE team_id = ? ORDER BY week DESC, id DESC`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sos history for %s: %w", teamID, err)
	}
	defer rows.Close()

	var history []float64
	for rows.Next() {
		var sos float64
		if err := rows.Scan(&sos); err != nil {
			return nil, err
		}
		history = append(history, sos)
	}
	return history, rows.Err()
}
