package notify

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// slackNotifier posts events to a single Slack channel.
type slackNotifier struct {
	api     *slack.Client
	channel string
}

// NewSlack creates a Slack notifier with the provided bot token and
// target channel ID.
func NewSlack(token, channel string) (Notifier, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if channel == "" {
		return nil, goerr.New("Slack channel is required")
	}

	return &slackNotifier{
		api:     slack.New(token),
		channel: channel,
	}, nil
}

func (n *slackNotifier) Notify(ctx context.Context, event Event) error {
	blocks := BuildBlocks(event)

	_, _, err := n.api.PostMessageContext(ctx, n.channel,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(event.Title, false),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post Slack message",
			goerr.V("channel", n.channel),
			goerr.V("kind", event.Kind))
	}

	return nil
}

// BuildBlocks renders an event into Slack Block Kit blocks.
func BuildBlocks(event Event) []slack.Block {
	header := slack.NewHeaderBlock(
		slack.NewTextBlockObject(slack.PlainTextType, event.Title, false, false),
	)

	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("*Event:*\n%s", event.Kind), false, false),
		slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("*Tenant:*\n%s", event.TenantID), false, false),
	}
	section := slack.NewSectionBlock(nil, fields, nil)

	blocks := []slack.Block{header, section}
	if event.Text != "" {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, event.Text, false, false),
			nil, nil,
		))
	}

	return blocks
}
