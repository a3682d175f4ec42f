package contact

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/davidfales/soccertraining-backend/pkg/config"
	"github.com/davidfales/soccertraining-backend/pkg/email"
	pkgerrors "github.com/davidfales/soccertraining-backend/pkg/errors"
	"github.com/davidfales/soccertraining-backend/pkg/logger"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const maxMessageLength = 5000

// Input is one contact form submission.
type Input struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

// Service forwards contact form submissions to the site owner.
type Service interface {
	Submit(ctx context.Context, input Input) error
}

type service struct {
	sender email.Sender
	cfg    config.EmailConfig
	logg   *logger.Logger
	now    func() time.Time
}

// Params wires contact form dependencies.
type Params struct {
	Sender email.Sender
	Config config.EmailConfig
	Logger *logger.Logger
	Now    func() time.Time
}

// NewService builds the contact form service.
func NewService(params Params) (Service, error) {
	if params.Sender == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "email sender required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "contact logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{sender: params.Sender, cfg: params.Config, logg: params.Logger, now: now}, nil
}

func (s *service) Submit(ctx context.Context, input Input) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Message = strings.TrimSpace(input.Message)

	if input.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if !emailPattern.MatchString(input.Email) {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid email address")
	}
	if input.Message == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "message is required")
	}
	if len(input.Message) > maxMessageLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "message is too long")
	}

	if !s.sender.Enabled() {
		return pkgerrors.New(pkgerrors.CodeDependency, "email delivery is not configured")
	}
	to := s.cfg.ContactTo
	if to == "" {
		to = s.cfg.OwnerAddress
	}
	if to == "" {
		return pkgerrors.New(pkgerrors.CodeDependency, "contact recipient is not configured")
	}

	if _, err := s.sender.Send(ctx, email.Message{
		To:      to,
		ReplyTo: input.Email,
		Subject: fmt.Sprintf("New website inquiry from %s", input.Name),
		HTML:    s.leadHTML(input),
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send contact email")
	}
	return nil
}

func (s *service) leadHTML(input Input) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	b.WriteString(`<h2>New Website Inquiry</h2>`)
	b.WriteString(`<table style="border-collapse: collapse; width: 100%;">`)
	writeRow(&b, "Name", input.Name)
	writeRow(&b, "Email", input.Email)
	if strings.TrimSpace(input.Phone) != "" {
		writeRow(&b, "Phone", input.Phone)
	}
	writeRow(&b, "Received", s.now().Format("Jan 2, 2006 3:04 PM MST"))
	b.WriteString(`</table>`)
	fmt.Fprintf(&b, `<h3>Message</h3><p style="white-space: pre-wrap;">%s</p>`, html.EscapeString(input.Message))
	b.WriteString(`</div>`)
	return b.String()
}

func writeRow(b *strings.Builder, label, value string) {
	fmt.Fprintf(b,
		`<tr><td style="padding: 4px 12px 4px 0; color: #6b7280;">%s</td><td style="padding: 4px 0;">%s</td></tr>`,
		html.EscapeString(label), html.EscapeString(value))
}
