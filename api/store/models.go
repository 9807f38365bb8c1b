/* models.go
 * This file contain the structs and helper functions that relate to DB objects
 */

package store

import (
	"errors"
	"fmt"
	"nfl-stats-lab/api/shared"
	"strings"
)

// ErrDuplicateTeam is returned when a snapshot contains the same team id more than once
var ErrDuplicateTeam = errors.New("duplicate team id")

// TeamDoc is the way a team is stored in the teams collection. The team id doubles as the document _id
type TeamDoc struct {
	DocID              string   `bson:"_id"`
	ID                 string   `bson:"id"`
	Name               string   `bson:"name,omitempty"`
	Wins               int      `bson:"wins"`
	Losses             int      `bson:"losses"`
	RemainingOpponents []string `bson:"remainingOpponents,omitempty"`
}

// AnalyticsDoc is the way an analytic record is stored; _id is the team id
type AnalyticsDoc struct {
	TeamID string             `bson:"_id"`
	Grades map[string]float64 `bson:"grades,omitempty"`
}

// ToTeam converts a stored document into a shared.Team. Older documents don't carry an id field, so _id is used
func (d TeamDoc) ToTeam() shared.Team {
	id := d.ID
	if id == "" {
		id = d.DocID
	}
	return shared.Team{
		ID:                 id,
		Name:               d.Name,
		Wins:               d.Wins,
		Losses:             d.Losses,
		RemainingOpponents: d.RemainingOpponents,
	}
}

func NewTeamDoc(t shared.Team) TeamDoc {
	return TeamDoc{
		DocID:              t.ID,
		ID:                 t.ID,
		Name:               t.Name,
		Wins:               t.Wins,
		Losses:             t.Losses,
		RemainingOpponents: t.RemainingOpponents,
	}
}

// ValidateTeams checks a team snapshot before it is published
// Preconditions: Receives the teams slice of a snapshot
// Postconditions: Returns nil, or an error if a team has no id, a negative record or an id appears more than once
func ValidateTeams(teams []shared.Team) error {
	seen := make(map[string]bool, len(teams))
	var dupes []string
	for _, t := range teams {
		if strings.TrimSpace(t.ID) == "" {
			return fmt.Errorf("team %q has an empty id", t.Name)
		}
		if t.Wins < 0 || t.Losses < 0 {
			return fmt.Errorf("team %s has a negative record %d-%d", t.ID, t.Wins, t.Losses)
		}
		if seen[t.ID] {
			dupes = append(dupes, t.ID)
			continue
		}
		seen[t.ID] = true
	}
	if len(dupes) > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateTeam, strings.Join(dupes, ", "))
	}
	return nil
}
