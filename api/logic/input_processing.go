/* input_processing.go
 * Contains the logic for matching user input against the teams in a snapshot
 */

package logic

import (
	"nfl-stats-lab/api/shared"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ResolveTeam matches a user supplied string to a team.
// Preconditions: Receives the raw user input (e.g. "phi", "Eagles" or "philly") and the teams from the current snapshot
// Postconditions: Returns the matched team and true, or false if nothing matched. An exact id match is checked first,
// then an exact name match, then the best ranked fuzzy match over the team names
func ResolveTeam(query string, teams []shared.Team) (shared.Team, bool) {
	query = strings.TrimSpace(query)
	query = strings.Trim(query, "\"“”")
	if query == "" {
		return shared.Team{}, false
	}
	lowerQuery := strings.ToLower(query)

	for _, t := range teams {
		if strings.EqualFold(t.ID, query) {
			return t, true
		}
	}

	// Build lookup of lowercase names so matches are case insensitive, but we return the original struct
	lookup := make(map[string]shared.Team)
	var names []string
	for _, t := range teams {
		lower := strings.ToLower(t.Name)
		if lower == "" {
			continue
		}
		if lower == lowerQuery {
			return t, true
		}
		if _, ok := lookup[lower]; !ok {
			lookup[lower] = t
			names = append(names, lower)
		}
	}

	ranks := fuzzy.RankFind(lowerQuery, names)
	if len(ranks) == 0 {
		return shared.Team{}, false
	}

	// RankFind doesn't return results in rank order, so pick the closest match ourselves. Ties go to the earliest name
	best := ranks[0]
	for _, r := range ranks[1:] {
		if r.Distance < best.Distance || (r.Distance == best.Distance && r.OriginalIndex < best.OriginalIndex) {
			best = r
		}
	}
	return lookup[best.Target], true
}
