package slack

import "context"

// Service defines the Slack operations used for workflow notifications
type Service interface {
	// LookupUserByEmail resolves a Slack user ID from an email address
	LookupUserByEmail(ctx context.Context, email string) (string, error)

	// SendDirectMessage opens a DM conversation with the user and posts the
	// message into it
	SendDirectMessage(ctx context.Context, slackUserID, text string) error
}
