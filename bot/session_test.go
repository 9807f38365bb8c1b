/* session_test.go
 * Contains the in memory DiscordSession the bot tests send through
 */

package bot

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

type post struct {
	channel string
	content string
}

// recordingSession keeps every post in order. Announce can reach it from the scheduler goroutine
type recordingSession struct {
	mu    sync.Mutex
	posts []post
	fail  error
}

var _ DiscordSession = (*recordingSession)(nil)

func newRecordingSession() *recordingSession {
	return &recordingSession{}
}

func (s *recordingSession) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}
	s.posts = append(s.posts, post{channel: channelID, content: content})
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

// last is the newest post, zero if nothing was sent
func (s *recordingSession) last() post {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.posts) == 0 {
		return post{}
	}
	return s.posts[len(s.posts)-1]
}

func (s *recordingSession) sent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posts)
}
