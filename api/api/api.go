/* api.go
 * This file contains the public methods for interacting with this package. Presentation code (bot, web, mcp and the
 * scheduler) should only call the functions in this file, not the feed, logic or store sub packages directly.
 * Every method reads the feed's current snapshot, so results are always for one consistent snapshot
 */

package api

import (
	"errors"
	"fmt"
	"nfl-stats-lab/api/feed"
	"nfl-stats-lab/api/logic"
	"nfl-stats-lab/api/shared"
	"sort"
	"strings"
)

// ErrTeamNotFound is returned when a team query doesn't match any team in the current snapshot
var ErrTeamNotFound = errors.New("team not found")

const (
	loadingMessage    = "Loading teams..."
	noMatchupsMessage = "No upcoming matchups found in database."
)

// Snapshotter is anything that can hand out the latest snapshot; *feed.Feed in production
type Snapshotter interface {
	Snapshot() shared.Snapshot
}

var _ Snapshotter = (*feed.Feed)(nil)

// API provides methods for reading derived league data
type API struct {
	Feed     Snapshotter
	Analyzer logic.Analyzer
}

// NewAPI creates a new API instance reading from the given feed. baseWeek is the week number of each team's next game
func NewAPI(f Snapshotter, baseWeek int) (*API, error) {
	if f == nil {
		return nil, fmt.Errorf("feed is required")
	}
	return &API{
		Feed:     f,
		Analyzer: logic.NewAnalyzer(baseWeek),
	}, nil
}

// BaseWeek is the week number of the current slate
func (a *API) BaseWeek() int {
	return a.Analyzer.BaseWeek
}

// Loaded reports whether any team data has been received
func (a *API) Loaded() bool {
	return !a.Feed.Snapshot().Empty()
}

// GetMatchups returns this week's de-duplicated matchups
func (a *API) GetMatchups() []shared.Matchup {
	return a.Analyzer.DeriveWeeklyMatchups(a.Feed.Snapshot().Teams)
}

// GetStandings returns all teams ordered by wins
func (a *API) GetStandings() []shared.Team {
	return logic.Standings(a.Feed.Snapshot().Teams)
}

// FindTeam looks a team up by its exact id
func (a *API) FindTeam(id string) (shared.Team, bool) {
	return logic.FindTeam(id, a.Feed.Snapshot().Teams)
}

// GetTeam resolves a user query (id, name or partial name) and returns the enriched team view.
// It returns ErrTeamNotFound if the query doesn't resolve to a team in the current snapshot.
func (a *API) GetTeam(query string) (shared.EnrichedTeam, error) {
	snap := a.Feed.Snapshot()
	team, ok := logic.ResolveTeam(query, snap.Teams)
	if !ok {
		return shared.EnrichedTeam{}, fmt.Errorf("%w: %q", ErrTeamNotFound, query)
	}
	enriched, ok := a.Analyzer.DeriveEnrichedTeam(team.ID, snap.Teams, snap.Analytics)
	if !ok {
		return shared.EnrichedTeam{}, fmt.Errorf("%w: %q", ErrTeamNotFound, query)
	}
	return enriched, nil
}

// GetMatchupsView returns the home view for json consumers
func (a *API) GetMatchupsView() MatchupsView {
	snap := a.Feed.Snapshot()
	return MatchupsView{
		Week:     a.Analyzer.BaseWeek,
		Loaded:   !snap.Empty(),
		Matchups: a.Analyzer.DeriveWeeklyMatchups(snap.Teams),
	}
}

// GetStandingsView returns the team list view for json consumers
func (a *API) GetStandingsView() StandingsView {
	snap := a.Feed.Snapshot()
	teams := logic.Standings(snap.Teams)
	if teams == nil {
		teams = []shared.Team{}
	}
	return StandingsView{Loaded: !snap.Empty(), Teams: teams}
}

// GetWeekSummary derives the matchups and every team's enriched view from a single snapshot
func (a *API) GetWeekSummary() WeekSummary {
	snap := a.Feed.Snapshot()
	summary := WeekSummary{
		Version:  snap.Version,
		Week:     a.Analyzer.BaseWeek,
		Matchups: a.Analyzer.DeriveWeeklyMatchups(snap.Teams),
		Teams:    make([]shared.EnrichedTeam, 0, len(snap.Teams)),
	}
	for _, t := range logic.Standings(snap.Teams) {
		if enriched, ok := a.Analyzer.DeriveEnrichedTeam(t.ID, snap.Teams, snap.Analytics); ok {
			summary.Teams = append(summary.Teams, enriched)
		}
	}
	return summary
}

// GetTeamView returns the team detail view for json consumers, or ErrTeamNotFound
func (a *API) GetTeamView(query string) (TeamView, error) {
	team, err := a.GetTeam(query)
	if err != nil {
		return TeamView{}, err
	}
	return newTeamView(team), nil
}

// GetTeamByID returns the enriched team whose id matches exactly, ignoring case. No name or fuzzy matching is done,
// so a mistyped id is ErrTeamNotFound rather than the closest team
func (a *API) GetTeamByID(id string) (shared.EnrichedTeam, error) {
	snap := a.Feed.Snapshot()
	for _, t := range snap.Teams {
		if !strings.EqualFold(t.ID, id) {
			continue
		}
		if enriched, ok := a.Analyzer.DeriveEnrichedTeam(t.ID, snap.Teams, snap.Analytics); ok {
			return enriched, nil
		}
		break
	}
	return shared.EnrichedTeam{}, fmt.Errorf("%w: %q", ErrTeamNotFound, id)
}

// GetTeamViewByID is GetTeamView for an exact team id
func (a *API) GetTeamViewByID(id string) (TeamView, error) {
	team, err := a.GetTeamByID(id)
	if err != nil {
		return TeamView{}, err
	}
	return newTeamView(team), nil
}

func newTeamView(team shared.EnrichedTeam) TeamView {
	games := make([]GameProbability, 0, len(team.Schedule))
	for _, game := range team.Schedule {
		games = append(games, GameProbability{
			ScheduleEntry:  game,
			WinProbability: logic.WinProbability(team.Wins, game.OpponentWins),
		})
	}
	return TeamView{
		EnrichedTeam: team,
		Difficulty:   logic.ScheduleDifficulty(team.SOS),
		Games:        games,
	}
}

func (a *API) FormatMatchups() string {
	snap := a.Feed.Snapshot()
	if snap.Empty() {
		return loadingMessage
	}
	matchups := a.Analyzer.DeriveWeeklyMatchups(snap.Teams)
	if len(matchups) == 0 {
		return noMatchupsMessage
	}

	var res strings.Builder
	res.WriteString(fmt.Sprintf("Week %d: %d matchups\n", a.Analyzer.BaseWeek, len(matchups)))
	for _, m := range matchups {
		res.WriteString(fmt.Sprintf("- %s (%d-%d) AT %s (%d-%d)\n", m.Away.ID, m.Away.Wins, m.Away.Losses, m.Home.ID, m.Home.Wins, m.Home.Losses))
	}
	return res.String()
}

// FormatStandings builds the league standings message
func (a *API) FormatStandings() string {
	standings := a.GetStandings()
	if len(standings) == 0 {
		return loadingMessage
	}

	var res strings.Builder
	res.WriteString("League Standings:\n")
	for i, t := range standings {
		res.WriteString(fmt.Sprintf("%d. %s (%s) %d-%d\n", i+1, displayName(t), t.ID, t.Wins, t.Losses))
	}
	return res.String()
}

// FormatTeamReport builds the team detail message: record, schedule difficulty, grades and upcoming games
func FormatTeamReport(team shared.EnrichedTeam) string {
	var res strings.Builder
	res.WriteString(fmt.Sprintf("%s (%s) %d-%d\n", displayName(team.Team), team.ID, team.Wins, team.Losses))
	res.WriteString(fmt.Sprintf("Schedule Difficulty: %.3f (%s)\n", team.SOS, logic.ScheduleDifficulty(team.SOS)))

	if offense, ok := team.Grades["offense"]; ok {
		res.WriteString(fmt.Sprintf("Offense Grade: %.1f\n", offense))
	} else {
		res.WriteString("Offense Grade: --\n")
	}
	// Other grades in a stable order
	var categories []string
	for k := range team.Grades {
		if k != "offense" {
			categories = append(categories, k)
		}
	}
	sort.Strings(categories)
	for _, k := range categories {
		res.WriteString(fmt.Sprintf("%s Grade: %.1f\n", titleCase(k), team.Grades[k]))
	}

	res.WriteString(FormatSchedule(team))
	return res.String()
}

// FormatSchedule builds the upcoming games list with the heuristic win probability for each game
func FormatSchedule(team shared.EnrichedTeam) string {
	if len(team.Schedule) == 0 {
		return "No games remaining.\n"
	}
	var res strings.Builder
	res.WriteString("Upcoming Games:\n")
	for _, game := range team.Schedule {
		prob := logic.WinProbability(team.Wins, game.OpponentWins)
		res.WriteString(fmt.Sprintf("- WK %d vs %s (Opp Rec: %d-%d) Win Prob: %.0f%%\n", game.Week, game.OpponentID, game.OpponentWins, game.OpponentLosses, prob*100))
	}
	return res.String()
}

func displayName(t shared.Team) string {
	if t.Name == "" {
		return t.ID
	}
	return t.Name
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
