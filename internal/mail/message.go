package mail

import (
	"fmt"
	"html"

	"Attendly/internal/model"
)

// Message 一封待发送的邮件
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

var errEmptyPayload = fmt.Errorf("mail job has no payload")

// Compose 把队列任务渲染为邮件
func Compose(job model.MailJob) (Message, error) {
	switch job.Kind {
	case model.MailKindAttendanceNotification:
		if job.Attendance == nil {
			return Message{}, errEmptyPayload
		}
		return AttendanceMessage(*job.Attendance), nil
	case model.MailKindResetPassword:
		if job.ResetPassword == nil {
			return Message{}, errEmptyPayload
		}
		return ResetPasswordMessage(*job.ResetPassword), nil
	default:
		return Message{}, fmt.Errorf("unknown mail kind %q", job.Kind)
	}
}

func AttendanceMessage(p model.AttendanceNotification) Message {
	name := html.EscapeString(p.EmployeeName)
	return Message{
		To:      p.Email,
		Subject: fmt.Sprintf("Attendance %s recorded", p.Status),
		Text:    fmt.Sprintf("%s has %s on %s at %s.", p.EmployeeName, p.Status, p.AttendanceDate, p.OccurredAt),
		HTML: fmt.Sprintf("<p>%s has <strong>%s</strong> on <strong>%s</strong> at <strong>%s</strong>.</p>",
			name, p.Status, p.AttendanceDate, p.OccurredAt),
	}
}

func ResetPasswordMessage(p model.ResetPasswordMail) Message {
	link := html.EscapeString(p.ResetURL)
	return Message{
		To:      p.Email,
		Subject: "Reset your password",
		Text:    "Use this link to reset your password: " + p.ResetURL,
		HTML:    fmt.Sprintf(`<p>Use this link to reset your password:</p><p><a href="%s">%s</a></p>`, link, link),
	}
}
