package email

import (
	"context"
	"fmt"

	"github.com/davidfales/soccertraining-backend/pkg/config"
	"github.com/resend/resend-go/v2"
)

// Sender is the outbound email surface used by the services.
type Sender interface {
	Enabled() bool
	Send(ctx context.Context, msg Message) (string, error)
}

// Message is a single outbound email.
type Message struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

// Client wraps the Resend API. A client built without an API key is
// disabled and Send returns an error, so callers can treat email as
// optional in local development.
type Client struct {
	client      *resend.Client
	enabled     bool
	fromAddress string
}

// NewClient builds a Resend-backed sender from configuration.
func NewClient(cfg config.EmailConfig) *Client {
	if cfg.ResendAPIKey == "" {
		return &Client{enabled: false}
	}

	return &Client{
		client:      resend.NewClient(cfg.ResendAPIKey),
		enabled:     true,
		fromAddress: cfg.FromAddress,
	}
}

// Enabled reports whether the client can actually send.
func (c *Client) Enabled() bool {
	return c.enabled
}

// FromAddress returns the default from address.
func (c *Client) FromAddress() string {
	return c.fromAddress
}

// Send delivers a single email and returns the provider message id.
func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	if !c.enabled {
		return "", fmt.Errorf("email client is disabled")
	}

	from := msg.From
	if from == "" {
		from = c.fromAddress
	}

	params := &resend.SendEmailRequest{
		From:    from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	if msg.ReplyTo != "" {
		params.ReplyTo = msg.ReplyTo
	}

	sent, err := c.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", fmt.Errorf("sending email: %w", err)
	}

	return sent.Id, nil
}
