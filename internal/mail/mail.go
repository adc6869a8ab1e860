package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"
)

// Mailer delivers the one-time sign-in link. The rest of the application
// treats delivery as an external collaborator and only sees this interface.
type Mailer interface {
	SendLoginLink(ctx context.Context, email, link string) error
}

// SMTPMailer sends through a plain SMTP relay.
type SMTPMailer struct {
	Addr string // host:port
	From string
}

func (m *SMTPMailer) SendLoginLink(_ context.Context, email, link string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Votre lien de connexion\r\nContent-Type: text/plain; charset=utf-8\r\n\r\nCliquez sur ce lien pour vous connecter (valable 15 minutes) :\r\n%s\r\n", m.From, email, link)
	return smtp.SendMail(m.Addr, nil, m.From, []string{email}, []byte(msg))
}

// LogMailer writes the link to the log instead of sending it. Used in
// development when no SMTP relay is configured.
type LogMailer struct {
	Log *zap.Logger
}

func (m *LogMailer) SendLoginLink(_ context.Context, email, link string) error {
	m.Log.Info("lien de connexion", zap.String("email", email), zap.String("link", link))
	return nil
}
