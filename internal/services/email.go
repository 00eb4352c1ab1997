package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/tripstitch/tripstitch-api/internal/config"
)

const invitationSubject = "You are invited to a calendar!"

var inviteTemplate = template.Must(template.New("invite").Parse(`<html>
<body>
	<h2>{{.Inviter}} invited you to {{.Calendar}}</h2>
	<p>You have been invited to plan <strong>{{.Calendar}}</strong> together.</p>
	<p><a href="{{.Link}}">Open the invitation</a></p>
	<p>The link expires in 7 days.</p>
</body>
</html>`))

var addedTemplate = template.Must(template.New("added").Parse(`<html>
<body>
	<h2>You now have access to {{.Calendar}}</h2>
	<p><strong>{{.Inviter}}</strong> added you to <strong>{{.Calendar}}</strong>.</p>
	<p><a href="{{.Link}}">Open the calendar</a></p>
</body>
</html>`))

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type EmailService struct {
	cfg  config.SMTPConfig
	send sendFunc
}

func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg, send: smtp.SendMail}
}

func (s *EmailService) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.Username != "" && s.cfg.Password != "" && s.cfg.From != ""
}

// Send is a no-op when SMTP is not configured.
func (s *EmailService) Send(to, subject, body string) error {
	if !s.IsConfigured() {
		return nil
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.cfg.From, to, subject, body)

	return s.send(addr, auth, s.cfg.From, []string{to}, []byte(msg))
}

func (s *EmailService) render(t *template.Template, calendarName, inviterName, link string) (string, error) {
	var buf bytes.Buffer
	err := t.Execute(&buf, struct{ Calendar, Inviter, Link string }{calendarName, inviterName, link})
	if err != nil {
		return "", fmt.Errorf("render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// SendCalendarInvite mails the accept link of a token invitation.
func (s *EmailService) SendCalendarInvite(to, calendarName, inviterName, link string) error {
	body, err := s.render(inviteTemplate, calendarName, inviterName, link)
	if err != nil {
		return err
	}
	return s.Send(to, invitationSubject, body)
}

// SendAddedToCalendar tells an existing user they were added directly.
func (s *EmailService) SendAddedToCalendar(to, calendarName, inviterName, link string) error {
	body, err := s.render(addedTemplate, calendarName, inviterName, link)
	if err != nil {
		return err
	}
	return s.Send(to, fmt.Sprintf("You were added to %s", calendarName), body)
}
