package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"Attendly/config"
	"Attendly/internal/model"
)

func TestComposeAttendance(t *testing.T) {
	msg, err := Compose(model.MailJob{
		Kind: model.MailKindAttendanceNotification,
		Attendance: &model.AttendanceNotification{
			Email:          "ana@example.com",
			EmployeeName:   "Ana Perez",
			AttendanceDate: "2026-02-07",
			Status:         model.AttendanceCheckIn,
			OccurredAt:     "2026-02-07T09:00:00.000Z",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", msg.To)
	assert.Equal(t, "Attendance check-in recorded", msg.Subject)
	assert.Equal(t, "Ana Perez has check-in on 2026-02-07 at 2026-02-07T09:00:00.000Z.", msg.Text)
	assert.Contains(t, msg.HTML, "<strong>check-in</strong>")
}

func TestComposeResetPassword(t *testing.T) {
	msg, err := Compose(model.MailJob{
		Kind: model.MailKindResetPassword,
		ResetPassword: &model.ResetPasswordMail{
			Email:    "ana@example.com",
			ResetURL: "http://localhost:3001/reset-password?token=abc",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Reset your password", msg.Subject)
	assert.Equal(t, "Use this link to reset your password: http://localhost:3001/reset-password?token=abc", msg.Text)
}

func TestComposeRejectsBrokenJobs(t *testing.T) {
	_, err := Compose(model.MailJob{Kind: model.MailKindResetPassword})
	assert.Error(t, err)

	_, err = Compose(model.MailJob{Kind: "sms"})
	assert.Error(t, err)
}

func TestConsoleSenderLogs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sender := NewConsoleSender(zap.New(core))

	require.NoError(t, sender.Send(context.Background(), Message{To: "a@example.com", Subject: "Hi", Text: "body"}))

	entries := logs.FilterMessage("[MAIL-CONSOLE]").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "a@example.com", entries[0].ContextMap()["to"])
	assert.Equal(t, TransportConsole, sender.Transport())
}

func TestNewSender(t *testing.T) {
	s, err := NewSender(&config.Config{MailTransport: "console"})
	require.NoError(t, err)
	assert.Equal(t, TransportConsole, s.Transport())

	s, err = NewSender(&config.Config{MailTransport: "smtp", MailHost: "localhost", MailPort: 2525, MailFrom: "no-reply@attendly.local"})
	require.NoError(t, err)
	assert.Equal(t, TransportSMTP, s.Transport())

	_, err = NewSender(&config.Config{MailTransport: "pigeon"})
	assert.Error(t, err)
}
