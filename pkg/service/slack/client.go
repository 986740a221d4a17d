package slack

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// DefaultCacheTTL is the default TTL for the email-to-user-ID cache
const DefaultCacheTTL = 15 * time.Minute

// cacheEntry holds a resolved Slack user ID with expiration
type cacheEntry struct {
	userID    string
	expiresAt time.Time
}

// client implements Service interface
type client struct {
	api      *slack.Client
	cacheTTL time.Duration

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// Option is a functional option for client configuration
type Option func(*client)

// WithCacheTTL sets the TTL for the email lookup cache
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *client) {
		c.cacheTTL = ttl
	}
}

// New creates a new Slack service with the provided bot token
func New(token string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	c := &client{
		api:      slack.New(token),
		cacheTTL: DefaultCacheTTL,
		cache:    make(map[string]cacheEntry),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// LookupUserByEmail resolves a Slack user ID from an email address. Results
// are cached to stay within Slack API rate limits.
func (c *client) LookupUserByEmail(ctx context.Context, email string) (string, error) {
	c.mu.RLock()
	entry, ok := c.cache[email]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.userID, nil
	}

	user, err := c.api.GetUserByEmailContext(ctx, email)
	if err != nil {
		return "", goerr.Wrap(err, "failed to look up Slack user by email", goerr.V("email", email))
	}

	c.mu.Lock()
	c.cache[email] = cacheEntry{
		userID:    user.ID,
		expiresAt: time.Now().Add(c.cacheTTL),
	}
	c.mu.Unlock()

	return user.ID, nil
}

// SendDirectMessage opens a DM conversation with the user and posts the
// message into it
func (c *client) SendDirectMessage(ctx context.Context, slackUserID, text string) error {
	channel, _, _, err := c.api.OpenConversationContext(ctx, &slack.OpenConversationParameters{
		Users: []string{slackUserID},
	})
	if err != nil {
		return goerr.Wrap(err, "failed to open DM conversation", goerr.V("user", slackUserID))
	}

	if _, _, err := c.api.PostMessageContext(ctx, channel.ID,
		slack.MsgOptionText(text, false),
	); err != nil {
		return goerr.Wrap(err, "failed to post DM", goerr.V("user", slackUserID))
	}

	return nil
}
