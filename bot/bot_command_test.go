/* bot_command_test.go
 * Contains unit tests for bot.go
 */

package bot

import (
	"errors"
	"nfl-stats-lab/api/api"
	"strings"
	"testing"
)

// region NewBot tests

func TestNewBot_Success(t *testing.T) {
	apiPtr, _, _ := api.NewMockAPI(14)
	bot, err := NewBot("test_token", apiPtr, "channel123")

	if err != nil {
		t.Errorf("Expected no error, got: %s", err.Error())
	}

	if bot.BotToken != "test_token" {
		t.Errorf("Expected bot token 'test_token', got '%s'", bot.BotToken)
	}

	if bot.APIPtr != apiPtr {
		t.Errorf("Expected APIPtr to match the provided API")
	}

	if bot.ChannelID != "channel123" {
		t.Errorf("Expected channel 'channel123', got '%s'", bot.ChannelID)
	}
}

func TestNewBot_EmptyToken(t *testing.T) {
	apiPtr, _, _ := api.NewMockAPI(14)
	_, err := NewBot("", apiPtr, "")

	if err == nil {
		t.Fatal("Expected error for empty token, got nil")
	}

	if !strings.Contains(err.Error(), "botToken is required") {
		t.Errorf("Unexpected error message: %s", err.Error())
	}
}

func TestNewBot_NilAPI(t *testing.T) {
	_, err := NewBot("test_token", nil, "")

	if err == nil {
		t.Fatal("Expected error for nil API, got nil")
	}

	if !strings.Contains(err.Error(), "apiPtr is required") {
		t.Errorf("Unexpected error message: %s", err.Error())
	}
}

// endregion

// region Announce tests

func TestAnnounce_NoSession(t *testing.T) {
	apiPtr, _, _ := api.NewMockAPI(14)
	bot, _ := NewBot("test_token", apiPtr, "channel123")

	if err := bot.Announce("hello"); err == nil {
		t.Error("Expected error when discord session is not open")
	}
}

func TestAnnounce_NoChannel(t *testing.T) {
	apiPtr, _, _ := api.NewMockAPI(14)
	bot, _ := NewBot("test_token", apiPtr, "")
	bot.setSession(newRecordingSession())

	if err := bot.Announce("hello"); err == nil {
		t.Error("Expected error when no channel is configured")
	}
}

func TestAnnounce_Success(t *testing.T) {
	apiPtr, _, _ := api.NewMockAPI(14)
	bot, _ := NewBot("test_token", apiPtr, "channel123")
	discord := newRecordingSession()
	bot.setSession(discord)

	if err := bot.Announce(apiPtr.FormatMatchups()); err != nil {
		t.Fatalf("Expected no error, got: %s", err.Error())
	}

	last := discord.last()
	if last.channel != "channel123" {
		t.Errorf("Expected message in channel123, got '%s'", last.channel)
	}
	if !strings.HasPrefix(last.content, "Week 14: 2 matchups") {
		t.Errorf("Unexpected announcement: %s", last.content)
	}
}

func TestAnnounce_SendError(t *testing.T) {
	apiPtr, _, _ := api.NewMockAPI(14)
	bot, _ := NewBot("test_token", apiPtr, "channel123")
	discord := newRecordingSession()
	discord.fail = errors.New("missing access")
	bot.setSession(discord)

	err := bot.Announce("hello")

	if err == nil || err.Error() != "missing access" {
		t.Errorf("Expected the send error, got: %v", err)
	}
	if discord.sent() != 0 {
		t.Errorf("Expected nothing recorded, got %d posts", discord.sent())
	}
}

// endregion
