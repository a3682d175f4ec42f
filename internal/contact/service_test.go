package contact

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/davidfales/soccertraining-backend/pkg/config"
	"github.com/davidfales/soccertraining-backend/pkg/email"
	pkgerrors "github.com/davidfales/soccertraining-backend/pkg/errors"
	"github.com/davidfales/soccertraining-backend/pkg/logger"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	enabled  bool
	messages []email.Message
}

func (f *fakeSender) Enabled() bool { return f.enabled }

func (f *fakeSender) Send(_ context.Context, msg email.Message) (string, error) {
	f.messages = append(f.messages, msg)
	return "msg_1", nil
}

func newContactService(t *testing.T, sender *fakeSender) Service {
	t.Helper()

	svc, err := NewService(Params{
		Sender: sender,
		Config: config.EmailConfig{ContactTo: "coach@example.com"},
		Logger: logger.New(logger.Options{ServiceName: "contact-test", Output: io.Discard}),
		Now:    func() time.Time { return time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return svc
}

func TestSubmitSendsLeadEmail(t *testing.T) {
	sender := &fakeSender{enabled: true}
	svc := newContactService(t, sender)

	err := svc.Submit(context.Background(), Input{
		Name:    "Sam Jones",
		Email:   "sam@example.com",
		Phone:   "555-0100",
		Message: "Do you run private sessions for 10 year olds?",
	})
	require.NoError(t, err)
	require.Len(t, sender.messages, 1)

	msg := sender.messages[0]
	require.Equal(t, "coach@example.com", msg.To)
	require.Equal(t, "sam@example.com", msg.ReplyTo)
	require.Contains(t, msg.Subject, "Sam Jones")
	require.Contains(t, msg.HTML, "private sessions")
}

func TestSubmitValidation(t *testing.T) {
	sender := &fakeSender{enabled: true}
	svc := newContactService(t, sender)

	cases := []struct {
		name  string
		input Input
	}{
		{"missing name", Input{Email: "sam@example.com", Message: "hi"}},
		{"missing email", Input{Name: "Sam", Message: "hi"}},
		{"bad email", Input{Name: "Sam", Email: "nope", Message: "hi"}},
		{"missing message", Input{Name: "Sam", Email: "sam@example.com"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Submit(context.Background(), tc.input)
			require.Error(t, err)
			coded := pkgerrors.As(err)
			require.NotNil(t, coded)
			require.Equal(t, pkgerrors.CodeValidation, coded.Code())
			require.Empty(t, sender.messages)
		})
	}
}

func TestSubmitWhenEmailDisabled(t *testing.T) {
	sender := &fakeSender{enabled: false}
	svc := newContactService(t, sender)

	err := svc.Submit(context.Background(), Input{
		Name:    "Sam",
		Email:   "sam@example.com",
		Message: "hi",
	})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeDependency, coded.Code())
}
