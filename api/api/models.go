/* models.go
 * This file contain the structs that are used by api consumers that render json (web and mcp)
 */

package api

import "nfl-stats-lab/api/shared"

// MatchupsView is the home view: this week's slate
type MatchupsView struct {
	Week     int              `json:"week"`
	Loaded   bool             `json:"loaded"`
	Matchups []shared.Matchup `json:"matchups"`
}

// StandingsView is the team list view
type StandingsView struct {
	Loaded bool          `json:"loaded"`
	Teams  []shared.Team `json:"teams"`
}

// TeamView is the team detail view
type TeamView struct {
	shared.EnrichedTeam
	Difficulty string            `json:"difficulty"`
	Games      []GameProbability `json:"games"`
}

type GameProbability struct {
	shared.ScheduleEntry
	WinProbability float64 `json:"winProbability"`
}

// WeekSummary is everything derived from one snapshot, used by the scheduler to archive a week
type WeekSummary struct {
	Version  uint64
	Week     int
	Matchups []shared.Matchup
	Teams    []shared.EnrichedTeam
}
