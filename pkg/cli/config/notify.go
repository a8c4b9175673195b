package config

import (
	"github.com/secmon-lab/briareus/pkg/service/notify"
	"github.com/secmon-lab/briareus/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Notify holds CLI flags for Slack notification configuration.
type Notify struct {
	slackToken   string
	slackChannel string
}

// Flags returns CLI flags for notification configuration
func (n *Notify) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-oauth-token",
			Usage:       "Slack OAuth token for escalation notifications",
			Category:    "Notification",
			Sources:     cli.EnvVars("BRIAREUS_SLACK_OAUTH_TOKEN"),
			Destination: &n.slackToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel ID for escalation notifications",
			Category:    "Notification",
			Sources:     cli.EnvVars("BRIAREUS_SLACK_CHANNEL"),
			Destination: &n.slackChannel,
		},
	}
}

// Configure builds the notifier from the flags. Returns nil when Slack
// is not configured; notifications are then skipped.
func (n *Notify) Configure() (notify.Notifier, error) {
	if n.slackToken == "" || n.slackChannel == "" {
		logging.Default().Info("Slack not configured, notifications disabled")
		return nil, nil
	}
	notifier, err := notify.NewSlack(n.slackToken, n.slackChannel)
	if err != nil {
		return nil, err
	}
	logging.Default().Info("Slack notifications enabled", "channel", n.slackChannel)
	return notifier, nil
}
