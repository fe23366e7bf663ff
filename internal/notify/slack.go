package notify

import (
	"fmt"

	"github.com/slack-go/slack"

	"github.com/nugh75/calendario-sub000/internal/config"
)

// Notifier posts audit summaries to a Slack channel. Nil when Slack is not
// configured; callers must tolerate that.
type Notifier struct {
	api       *slack.Client
	channelID string
}

// NewFromConfig returns a Notifier, or nil when no Slack token/channel is
// configured.
func NewFromConfig(cfg config.Config) *Notifier {
	if !cfg.SlackConfigured() {
		return nil
	}
	return &Notifier{
		api:       slack.New(cfg.SlackBotToken),
		channelID: cfg.SlackChannelID,
	}
}

// PostSummary posts a titled plain-text summary to the configured channel.
func (n *Notifier) PostSummary(title, body string) error {
	msg := fmt.Sprintf("*%s*\n```%s```", title, body)
	_, _, err := n.api.PostMessage(n.channelID, slack.MsgOptionText(msg, false))
	if err != nil {
		return fmt.Errorf("post to %s: %w", n.channelID, err)
	}
	return nil
}
