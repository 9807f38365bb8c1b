/* models.go
 * This file contain the structs that are shared between sub packages: the raw records delivered by the sync layer
 * and the derived structures handed to the presentation layer
 */

package shared

import "time"

// Team is a single team record as stored in the teams collection
type Team struct {
	ID                 string   `bson:"id" json:"id"`
	Name               string   `bson:"name" json:"name"`
	Wins               int      `bson:"wins" json:"wins"`
	Losses             int      `bson:"losses" json:"losses"`
	RemainingOpponents []string `bson:"remainingOpponents" json:"remainingOpponents"` // index 0 is this week's opponent
}

// AnalyticRecord holds the computed grades for one team, e.g. offense: 82.5
type AnalyticRecord struct {
	Grades map[string]float64 `bson:"grades" json:"grades"`
}

// Matchup is the nearest scheduled game between two teams
type Matchup struct {
	Home Team `json:"home"`
	Away Team `json:"away"`
}

type ScheduleEntry struct {
	Week           int    `json:"week"`
	OpponentID     string `json:"opponentId"`
	OpponentWins   int    `json:"opponentWins"`
	OpponentLosses int    `json:"opponentLosses"`
}

// EnrichedTeam is a Team merged with its remaining schedule and analytic grades
type EnrichedTeam struct {
	Team
	SOS      float64            `json:"sos"`
	Schedule []ScheduleEntry    `json:"schedule"`
	Grades   map[string]float64 `json:"grades"`
}

// Snapshot is a complete replacement of both record sets. A snapshot is never modified once published
type Snapshot struct {
	Teams      []Team
	Analytics  map[string]AnalyticRecord
	Version    uint64
	ReceivedAt time.Time
}

// Clone returns a deep copy of the snapshot so that callers can't mutate shared state
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Version:    s.Version,
		ReceivedAt: s.ReceivedAt,
	}
	if s.Teams != nil {
		out.Teams = make([]Team, len(s.Teams))
		for i, t := range s.Teams {
			out.Teams[i] = t
			out.Teams[i].RemainingOpponents = append([]string(nil), t.RemainingOpponents...)
		}
	}
	if s.Analytics != nil {
		out.Analytics = make(map[string]AnalyticRecord, len(s.Analytics))
		for id, rec := range s.Analytics {
			var grades map[string]float64
			if rec.Grades != nil {
				grades = make(map[string]float64, len(rec.Grades))
				for k, v := range rec.Grades {
					grades[k] = v
				}
			}
			out.Analytics[id] = AnalyticRecord{Grades: grades}
		}
	}
	return out
}

// Empty reports whether the snapshot has no teams, i.e. nothing has been received yet
func (s Snapshot) Empty() bool {
	return len(s.Teams) == 0
}
