package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"IntelBriefing/internal/config"
	"IntelBriefing/internal/domain"
	"IntelBriefing/internal/ports"
)

// maxMessageLen is Discord's hard limit for message content.
const maxMessageLen = 2000

// channelSender is the subset of *discordgo.Session the alerter needs.
type channelSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Alerter posts failure notices to a Discord channel through a bot session.
type Alerter struct {
	session   channelSender
	channelID string
}

var _ ports.Alerter = (*Alerter)(nil)

// NewAlerter opens a REST-only bot session; no gateway connection is made.
func NewAlerter(cfg config.DiscordConfig) (*Alerter, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("discord alerter: %w", domain.ErrMissingCredential)
	}
	session, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return &Alerter{session: session, channelID: cfg.ChannelID}, nil
}

// Alert sends text, truncated to the Discord message limit.
func (a *Alerter) Alert(ctx context.Context, text string) error {
	if a == nil || a.session == nil {
		return fmt.Errorf("discord alerter: %w", domain.ErrMissingCredential)
	}
	runes := []rune(text)
	if len(runes) > maxMessageLen {
		text = string(runes[:maxMessageLen-1]) + "…"
	}
	if _, err := a.session.ChannelMessageSend(a.channelID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("%w: discord send: %v", domain.ErrBackendTransport, err)
	}
	return nil
}
