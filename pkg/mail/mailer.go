// Package mail sends email through an SMTP server or, in development, into
// the log.
//
//	mailer := mail.NewSMTPMailer(&mail.SMTPConfig{Host: "localhost", Port: 1025}, logger)
//	err := mailer.Send(ctx, mail.NewMessage().To("aoi@example.com", "").Subject("Hi").Body("..."))
package mail

import (
	"context"
	"fmt"
	"strings"
)

// Mailer sends messages.
type Mailer interface {
	Send(ctx context.Context, message *Message) error
}

type Logger interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

// ----- Log Mailer -----

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	logger Logger
	from   Address
}

func NewLogMailer(from Address, logger Logger) *LogMailer {
	return &LogMailer{logger: logger, from: from}
}

func (m *LogMailer) Send(ctx context.Context, message *Message) error {
	if err := message.Validate(); err != nil {
		return fmt.Errorf("message validation failed: %w", err)
	}
	if message.GetFrom().Email == "" {
		message.From(m.from.Email, m.from.Name)
	}

	rule := strings.Repeat("=", 70)
	m.logger.Println(rule)
	m.logger.Println("📧 EMAIL (log driver, not sent)")
	m.logger.Printf("From: %s", message.GetFrom().String())
	for _, to := range message.GetTo() {
		m.logger.Printf("To: %s", to.String())
	}
	m.logger.Printf("Subject: %s", message.GetSubject())
	m.logger.Println("---")
	if message.GetBody() != "" {
		m.logger.Println(message.GetBody())
	}
	for _, att := range message.GetAttachments() {
		m.logger.Printf("Attachment: %s (%s, %d bytes)", att.Filename, att.ContentType, len(att.Data))
	}
	m.logger.Println(rule)

	return nil
}
