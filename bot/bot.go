/* bot.go
 * Contains the Bot struct, its per-user session state and the command rate limiter. Requires a discord bot token and
 * APIPtr, both of which are passed in from main.go
 */

package bot

import (
	"fmt"
	"nfl-stats-lab/api/api"
	"strings"
	"sync"
	"time"

	"github.com/go-andiamo/splitter"
	"golang.org/x/time/rate"
)

const (
	// each user may burst a few commands, then gets one every commandInterval
	commandInterval = 2 * time.Second
	commandBurst    = 3
)

// View is the screen a user last looked at
type View string

const (
	ViewHome   View = "home"
	ViewTeams  View = "teams"
	ViewDetail View = "detail"
)

// Session is the navigation state of one discord user. It is owned by the bot and passed to handlers explicitly
type Session struct {
	View           View
	SelectedTeamID string
	limiter        *rate.Limiter
}

type Bot struct {
	BotToken  string
	APIPtr    *api.API
	ChannelID string // channel used for scheduled announcements

	mu       sync.Mutex
	sessions map[string]*Session
	session  DiscordSession // set once the discord session is open
}

func NewBot(botToken string, apiPtr *api.API, channelID string) (*Bot, error) {
	if botToken == "" {
		return nil, fmt.Errorf("botToken is required but none was provided")
	}
	if apiPtr == nil {
		return nil, fmt.Errorf("apiPtr is required but none was provided")
	}

	return &Bot{
		BotToken:  botToken,
		APIPtr:    apiPtr,
		ChannelID: channelID,
		sessions:  make(map[string]*Session),
	}, nil
}

// sessionFor returns the session for a user, creating it on first use
func (b *Bot) sessionFor(userID string) *Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sessions == nil {
		b.sessions = make(map[string]*Session)
	}
	s, ok := b.sessions[userID]
	if !ok {
		s = &Session{
			View:    ViewHome,
			limiter: rate.NewLimiter(rate.Every(commandInterval), commandBurst),
		}
		b.sessions[userID] = s
	}
	return s
}

// SessionState returns a copy of a user's navigation state
func (b *Bot) SessionState(userID string) Session {
	s := b.sessionFor(userID)
	b.mu.Lock()
	defer b.mu.Unlock()
	return Session{View: s.View, SelectedTeamID: s.SelectedTeamID}
}

func (b *Bot) navigate(userID string, view View, teamID string) {
	s := b.sessionFor(userID)
	b.mu.Lock()
	defer b.mu.Unlock()
	s.View = view
	if teamID != "" {
		s.SelectedTeamID = teamID
	}
}

// allow reports whether the user is within their command rate
func (b *Bot) allow(userID string) bool {
	return b.sessionFor(userID).limiter.Allow()
}

// Announce sends a message to the announcement channel. Used by the scheduler
// Preconditions: The bot is running (Run has opened a session) and ChannelID is set
// Postconditions: Message is sent to the channel, or an error is returned
func (b *Bot) Announce(content string) error {
	b.mu.Lock()
	session := b.session
	b.mu.Unlock()

	if session == nil {
		return fmt.Errorf("discord session is not open")
	}
	if b.ChannelID == "" {
		return fmt.Errorf("no announcement channel configured")
	}
	_, err := session.ChannelMessageSend(b.ChannelID, content)
	return err
}

func (b *Bot) setSession(session DiscordSession) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session = session
}

// splitCommand splits a message into the command and its argument string. Quoted team names are kept together
// (we use splitter instead of strings.Fields so "New York Giants" is one argument)
// Preconditions: Receives raw message content
// Postconditions: Returns the lower case command (e.g. "$team") and the remaining arguments joined by spaces
func splitCommand(content string) (string, string) {
	spaceSplitter, err := splitter.NewSplitter(' ', splitter.DoubleQuotes, splitter.LeftRightDoubleDoubleQuotes)
	if err != nil {
		return "", ""
	}
	parts, err := spaceSplitter.Split(strings.TrimSpace(content))
	if err != nil || len(parts) == 0 {
		// unbalanced quotes, fall back to plain whitespace splitting
		parts = strings.Fields(content)
		if len(parts) == 0 {
			return "", ""
		}
	}

	var args []string
	for _, p := range parts[1:] {
		p = strings.TrimSpace(strings.Trim(p, "\"“”"))
		if p != "" {
			args = append(args, p)
		}
	}
	return strings.ToLower(parts[0]), strings.Join(args, " ")
}
