package notify

import (
	"context"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type Message struct {
	Subject string
	Text    string
	HTML    string
	From    string
	To      string
}

// Transport delivers one multipart message.
type Transport interface {
	Deliver(ctx context.Context, m Message) error
}

type SMTPTransport struct {
	dialer *gomail.Dialer
	log    *zap.Logger
}

func NewSMTPTransport(host string, port int, username, password string, log *zap.Logger) *SMTPTransport {
	return &SMTPTransport{
		dialer: gomail.NewDialer(host, port, username, password),
		log:    log,
	}
}

func (t *SMTPTransport) Deliver(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/plain", m.Text)
	msg.AddAlternative("text/html", m.HTML)

	return t.dialer.DialAndSend(msg)
}

// LogTransport only logs messages. Used when no SMTP host is configured.
type LogTransport struct {
	log *zap.Logger
}

func NewLogTransport(log *zap.Logger) *LogTransport {
	return &LogTransport{log: log}
}

func (t *LogTransport) Deliver(_ context.Context, m Message) error {
	t.log.Info("mail (not sent, no SMTP host)",
		zap.String("from", m.From),
		zap.String("to", m.To),
		zap.String("subject", m.Subject),
		zap.String("text", m.Text),
	)
	return nil
}

// NewTransport picks SMTP delivery, or logging when host is empty.
func NewTransport(host string, port int, username, password string, log *zap.Logger) Transport {
	if host == "" {
		return NewLogTransport(log)
	}
	return NewSMTPTransport(host, port, username, password, log)
}
