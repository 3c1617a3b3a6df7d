package slack

import (
	"context"
	"strings"

	"github.com/slack-go/slack"
	"github.com/smallbiznis/addonhook/internal/config"
)

type Provider interface {
	PostMessage(ctx context.Context, channelID string, message string) error
}

type NoOpProvider struct{}

func (p *NoOpProvider) PostMessage(ctx context.Context, channelID string, message string) error {
	return nil
}

// poster is the subset of the slack-go client used here.
type poster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

type APIProvider struct {
	client poster
}

func NewAPIProvider(token string) *APIProvider {
	return &APIProvider{client: slack.New(token)}
}

func (p *APIProvider) PostMessage(ctx context.Context, channelID string, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}
	_, _, err := p.client.PostMessageContext(ctx, channelID, slack.MsgOptionText(message, false))
	return err
}

// NewFromConfig returns a Slack Web API provider, or a no-op when no token is configured.
func NewFromConfig(cfg config.Config) Provider {
	if !cfg.Slack.Enabled() {
		return &NoOpProvider{}
	}
	return NewAPIProvider(cfg.Slack.Token)
}
