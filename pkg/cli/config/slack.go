package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	slacksvc "github.com/grclab/riskflow/pkg/service/slack"
)

// Slack holds CLI flags for Slack notification delivery
type Slack struct {
	botToken string
}

// Flags returns CLI flags for Slack configuration
func (s *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot Token for direct message delivery (optional)",
			Category:    "Slack",
			Sources:     cli.EnvVars("RISKFLOW_SLACK_BOT_TOKEN"),
			Destination: &s.botToken,
		},
	}
}

// Configure returns a Slack service when a bot token is set, or nil when
// Slack delivery is disabled.
func (s *Slack) Configure() (slacksvc.Service, error) {
	if s.botToken == "" {
		return nil, nil
	}
	return slacksvc.New(s.botToken)
}

// LogValue implements slog.LogValuer interface
func (s Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("has_bot_token", s.botToken != ""),
	)
}
