package delivery

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v3"

	"quizduel/internal/domain"
)

type emailSender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

var emailTemplate = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif;">
  <h2>{{.Title}}</h2>
  <p>Hi {{.Username}},</p>
  <p>{{if .From}}<strong>{{.From}}</strong> {{end}}{{.Message}}</p>
  <p>Open QuizDuel to respond.</p>
</body>
</html>`))

// EmailChannel mails users that have no push token, so they still hear about challenges.
type EmailChannel struct {
	sender emailSender
	from   string
}

func NewEmailChannel(client *resend.Client, fromEmail string) *EmailChannel {
	return &EmailChannel{sender: client.Emails, from: fromEmail}
}

func (e *EmailChannel) Name() string { return "email" }

func (e *EmailChannel) Deliver(ctx context.Context, user *domain.User, notif *domain.Notification) error {
	if user.PushToken != nil && *user.PushToken != "" {
		return nil
	}
	if user.Email == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data := struct {
		Title    string
		Username string
		From     string
		Message  string
	}{
		Title:    notif.Title,
		Username: user.Username,
		Message:  notif.Message,
	}
	if notif.FromUser != nil {
		data.From = notif.FromUser.Username
	}

	var body bytes.Buffer
	if err := emailTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	_, err := e.sender.Send(&resend.SendEmailRequest{
		From:    fmt.Sprintf("QuizDuel <%s>", e.from),
		To:      []string{user.Email},
		Subject: notif.Title,
		Html:    body.String(),
	})
	return err
}
