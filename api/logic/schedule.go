/* schedule.go
 * Contains the schedule analysis logic: this week's matchups, strength of schedule and the win probability heuristic.
 * Everything in this file is a pure function of the snapshot it is given
 */

package logic

import (
	"nfl-stats-lab/api/shared"
	"slices"
)

// DefaultBaseWeek is the week number used for a team's next game when no base week is configured
const DefaultBaseWeek = 14

const (
	neutralSOS     = 0.5
	minWinProb     = 0.10
	maxWinProb     = 0.90
	hardScheduleAt = 0.55
)

// Analyzer derives matchups and enriched team views from a snapshot of team and analytics records
type Analyzer struct {
	// BaseWeek is the week number of the first entry in a team's remaining schedule
	BaseWeek int
}

// NewAnalyzer creates an Analyzer anchored at baseWeek. Non-positive values fall back to DefaultBaseWeek
func NewAnalyzer(baseWeek int) Analyzer {
	if baseWeek <= 0 {
		baseWeek = DefaultBaseWeek
	}
	return Analyzer{BaseWeek: baseWeek}
}

// FindTeam looks up a team by its id
// Preconditions: Receives team id and the teams slice from the current snapshot
// Postconditions: Returns the team and true, or an empty Team and false if no team has that id
func FindTeam(id string, teams []shared.Team) (shared.Team, bool) {
	for _, t := range teams {
		if t.ID == id {
			return t, true
		}
	}
	return shared.Team{}, false
}

// indexTeams builds an id lookup. For duplicate ids the first record wins
func indexTeams(teams []shared.Team) map[string]shared.Team {
	lookup := make(map[string]shared.Team, len(teams))
	for _, t := range teams {
		if _, ok := lookup[t.ID]; !ok {
			lookup[t.ID] = t
		}
	}
	return lookup
}

// matchupKey returns the same key for (a, b) and (b, a). Ids are kept apart so no separator can collide
func matchupKey(a string, b string) [2]string {
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}

// DeriveWeeklyMatchups gets this week's games, i.e. the first entry in each team's remaining schedule.
// Preconditions: Receives the teams slice from the current snapshot. Team ids are assumed unique
// Postconditions: Returns one Matchup per pairing in input order. The first team seen for a pairing is home. An opponent
// that is not in the snapshot is returned as a placeholder team with a 0-0 record
func (a Analyzer) DeriveWeeklyMatchups(teams []shared.Team) []shared.Matchup {
	lookup := indexTeams(teams)
	processed := make(map[[2]string]bool)
	matchups := []shared.Matchup{}

	for _, t := range teams {
		if len(t.RemainingOpponents) == 0 {
			continue
		}
		oppID := t.RemainingOpponents[0]
		key := matchupKey(t.ID, oppID)
		if processed[key] {
			continue
		}
		processed[key] = true

		away, ok := lookup[oppID]
		if !ok {
			away = shared.Team{ID: oppID}
		}
		matchups = append(matchups, shared.Matchup{Home: t, Away: away})
	}
	return matchups
}

// DeriveEnrichedTeam merges a team's record with its remaining schedule and analytics grades
// Preconditions: Receives the team id, and the teams and analytics from the current snapshot
// Postconditions: Returns the EnrichedTeam and true, or false if the team is not in the snapshot
func (a Analyzer) DeriveEnrichedTeam(teamID string, teams []shared.Team, analytics map[string]shared.AnalyticRecord) (shared.EnrichedTeam, bool) {
	lookup := indexTeams(teams)
	team, ok := lookup[teamID]
	if !ok {
		return shared.EnrichedTeam{}, false
	}

	oppWins, oppLosses := 0, 0
	schedule := make([]shared.ScheduleEntry, 0, len(team.RemainingOpponents))
	for i, oppID := range team.RemainingOpponents {
		// Unknown opponents count as 0-0 and add nothing to the totals
		opp := lookup[oppID]
		oppWins += opp.Wins
		oppLosses += opp.Losses
		schedule = append(schedule, shared.ScheduleEntry{
			Week:           a.BaseWeek + i,
			OpponentID:     oppID,
			OpponentWins:   opp.Wins,
			OpponentLosses: opp.Losses,
		})
	}

	grades := map[string]float64{}
	if rec, ok := analytics[teamID]; ok && rec.Grades != nil {
		for k, v := range rec.Grades {
			grades[k] = v
		}
	}

	return shared.EnrichedTeam{
		Team:     team,
		SOS:      StrengthOfSchedule(oppWins, oppLosses),
		Schedule: schedule,
		Grades:   grades,
	}, true
}

// StrengthOfSchedule is the share of decided games the remaining opponents have won. With no games it is 0.5
func StrengthOfSchedule(oppWins int, oppLosses int) float64 {
	total := oppWins + oppLosses
	if total <= 0 {
		return neutralSOS
	}
	return float64(oppWins) / float64(total)
}

// WinProbability is a display heuristic, not a forecast: the team's share of the combined win count, clamped to
// [0.10, 0.90]. A combined count of zero is treated as one
func WinProbability(selfWins int, opponentWins int) float64 {
	denom := selfWins + opponentWins
	if denom == 0 {
		denom = 1
	}
	prob := float64(selfWins) / float64(denom)
	return min(max(prob, minWinProb), maxWinProb)
}

// ScheduleDifficulty labels a strength of schedule for display
func ScheduleDifficulty(sos float64) string {
	if sos > hardScheduleAt {
		return "hard"
	}
	return "soft"
}

// Standings returns the teams ordered by wins, most first. Teams on equal wins keep their snapshot order. The input
// slice is not modified
func Standings(teams []shared.Team) []shared.Team {
	sorted := slices.Clone(teams)
	slices.SortStableFunc(sorted, func(x, y shared.Team) int {
		return y.Wins - x.Wins
	})
	return sorted
}
