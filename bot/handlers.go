/* handlers.go
 * Contains testable handler methods that accept DiscordSession interface
 */

package bot

import (
	"errors"
	"fmt"
	"log"
	"nfl-stats-lab/api/api"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// helpMessageHandler handles the $help command with a DiscordSession interface
func (b *Bot) helpMessageHandler(session DiscordSession, message *discordgo.MessageCreate) {
	var res strings.Builder
	res.WriteString("NFL Lab Bot v1.0\n")
	res.WriteString("`$matchups`: shows this week's matchups with each team's record\n")
	res.WriteString("`$teams`: shows the league standings, ordered by wins\n")
	res.WriteString("`$team name`: shows a team's record, schedule difficulty, grades and upcoming games. Accepts the team code (PHI), full name or part of the name\n")
	res.WriteString("`$schedule [name]`: shows the upcoming games and win probability for a team. Without a name it uses the last team you looked at with `$team`\n")
	res.WriteString("Win probability is a rough ratio of the two teams' win totals, it is not a forecast\n")
	session.ChannelMessageSend(message.ChannelID, res.String())
}

// matchupsHandler handles the $matchups command
func (b *Bot) matchupsHandler(session DiscordSession, message *discordgo.MessageCreate) {
	b.navigate(message.Author.ID, ViewHome, "")
	session.ChannelMessageSend(message.ChannelID, b.APIPtr.FormatMatchups())
}

// teamsHandler handles the $teams command
func (b *Bot) teamsHandler(session DiscordSession, message *discordgo.MessageCreate) {
	b.navigate(message.Author.ID, ViewTeams, "")
	session.ChannelMessageSend(message.ChannelID, b.APIPtr.FormatStandings())
}

// teamHandler handles the $team command. The resolved team becomes the user's selected team
func (b *Bot) teamHandler(session DiscordSession, message *discordgo.MessageCreate, query string) {
	if query == "" {
		session.ChannelMessageSend(message.ChannelID, "Usage: `$team name`, e.g. `$team PHI`")
		return
	}

	team, err := b.APIPtr.GetTeam(query)
	if err != nil {
		session.ChannelMessageSend(message.ChannelID, teamErrorMessage(err, query))
		return
	}

	b.navigate(message.Author.ID, ViewDetail, team.ID)
	session.ChannelMessageSend(message.ChannelID, api.FormatTeamReport(team))
}

// scheduleHandler handles the $schedule command, using the user's selected team when no query is given
func (b *Bot) scheduleHandler(session DiscordSession, message *discordgo.MessageCreate, query string) {
	if query == "" {
		query = b.SessionState(message.Author.ID).SelectedTeamID
	}
	if query == "" {
		session.ChannelMessageSend(message.ChannelID, "No team selected. Use `$team name` first or `$schedule name`")
		return
	}

	team, err := b.APIPtr.GetTeam(query)
	if err != nil {
		session.ChannelMessageSend(message.ChannelID, teamErrorMessage(err, query))
		return
	}

	b.navigate(message.Author.ID, ViewDetail, team.ID)
	res := fmt.Sprintf("%s (%d-%d)\n%s", team.ID, team.Wins, team.Losses, api.FormatSchedule(team))
	session.ChannelMessageSend(message.ChannelID, res)
}

func teamErrorMessage(err error, query string) string {
	if errors.Is(err, api.ErrTeamNotFound) {
		return fmt.Sprintf("Could not find a team matching '%s'. Use $teams to see all teams", query)
	}
	log.Println(err)
	return "An unexpected error occured"
}

// newMessageHandler routes messages to appropriate handlers with a DiscordSession interface
// botUserID is the bot's user ID to prevent self-responses
func (b *Bot) newMessageHandler(session DiscordSession, message *discordgo.MessageCreate, botUserID string) {
	// Prevent bot from responding to its own messages
	if message.Author == nil || message.Author.ID == botUserID {
		return
	}
	if !strings.HasPrefix(message.Content, "$") {
		return
	}

	command, args := splitCommand(message.Content)
	switch command {
	case "$help", "$matchups", "$teams", "$team", "$schedule":
	default:
		return
	}

	if !b.allow(message.Author.ID) {
		session.ChannelMessageSend(message.ChannelID, fmt.Sprintf("Slow down %s, try again in a few seconds", message.Author.Username))
		return
	}

	// Route to appropriate handler
	switch command {
	case "$help":
		b.helpMessageHandler(session, message)

	case "$matchups":
		b.matchupsHandler(session, message)

	case "$teams":
		b.teamsHandler(session, message)

	case "$team":
		b.teamHandler(session, message, args)

	case "$schedule":
		b.scheduleHandler(session, message, args)
	}
}
