/* session_interface.go
 * Contains the interface over the Discord session so handlers and announcements can be tested without discord
 */

package bot

import "github.com/bwmarrin/discordgo"

// DiscordSession is the subset of *discordgo.Session the bot uses: replying to commands and posting announcements
type DiscordSession interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

var _ DiscordSession = (*discordgo.Session)(nil)
