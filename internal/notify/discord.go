package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// DiscordPoster posts digests over the Discord REST API. No gateway
// connection is opened; channel posting only needs the bot token.
type DiscordPoster struct {
	session *discordgo.Session
}

// NewDiscordPoster builds a poster from a bot token.
func NewDiscordPoster(token string) (*DiscordPoster, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("notify: discord session: %w", err)
	}
	return &DiscordPoster{session: session}, nil
}

// Post sends content to the channel.
func (p *DiscordPoster) Post(ctx context.Context, channelID, content string) error {
	_, err := p.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("notify: send to %s: %w", channelID, err)
	}
	return nil
}
