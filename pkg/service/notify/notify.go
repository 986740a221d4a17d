package notify

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/grclab/riskflow/pkg/domain/interfaces"
	"github.com/grclab/riskflow/pkg/domain/model"
	"github.com/grclab/riskflow/pkg/service/slack"
	"github.com/grclab/riskflow/pkg/utils/logging"
)

// Dispatcher delivers workflow notifications. Every notification is persisted
// as an in-app record; when a Slack service is configured and the recipient ID
// is an email address, a DM is sent as well. Slack delivery is best-effort
// and never fails the dispatch.
type Dispatcher struct {
	repo  interfaces.Repository
	slack slack.Service
}

// Option is a functional option for Dispatcher configuration
type Option func(*Dispatcher)

// WithSlack enables Slack DM delivery alongside in-app records
func WithSlack(svc slack.Service) Option {
	return func(d *Dispatcher) {
		d.slack = svc
	}
}

// New creates a notification dispatcher backed by the repository
func New(repo interfaces.Repository, opts ...Option) *Dispatcher {
	d := &Dispatcher{repo: repo}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch persists the notification and forwards it to Slack when possible
func (d *Dispatcher) Dispatch(ctx context.Context, notification *model.Notification) error {
	if notification.UserID == "" {
		return goerr.New("notification recipient is required")
	}

	created, err := d.repo.Notification().Create(ctx, notification)
	if err != nil {
		return goerr.Wrap(err, "failed to persist notification",
			goerr.V("type", notification.Type),
			goerr.V("user", notification.UserID))
	}

	d.sendSlack(ctx, created)

	return nil
}

// sendSlack forwards the notification as a Slack DM. Failures are logged and
// swallowed; the persisted in-app record is the source of truth.
func (d *Dispatcher) sendSlack(ctx context.Context, notification *model.Notification) {
	if d.slack == nil {
		return
	}
	email := string(notification.UserID)
	if !strings.Contains(email, "@") {
		return
	}

	slackUserID, err := d.slack.LookupUserByEmail(ctx, email)
	if err != nil {
		logging.From(ctx).Warn("failed to resolve Slack user for notification",
			"user", notification.UserID,
			"error", err.Error())
		return
	}

	text := notification.Title
	if notification.Message != "" {
		text += "\n" + notification.Message
	}

	if err := d.slack.SendDirectMessage(ctx, slackUserID, text); err != nil {
		logging.From(ctx).Warn("failed to send Slack notification",
			"user", notification.UserID,
			"type", notification.Type.String(),
			"error", err.Error())
	}
}
