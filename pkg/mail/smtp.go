// -----------------------------------------------------------------------------
// SMTP Mailer Driver
// -----------------------------------------------------------------------------
// Sends through net/smtp. Mailpit / Mailhog on localhost:1025 work without
// credentials for development.
// -----------------------------------------------------------------------------

package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     Address
	Timeout  time.Duration
}

type SMTPMailer struct {
	config *SMTPConfig
	logger Logger
}

func NewSMTPMailer(config *SMTPConfig, logger Logger) *SMTPMailer {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &SMTPMailer{
		config: config,
		logger: logger,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, message *Message) error {
	if err := message.Validate(); err != nil {
		return fmt.Errorf("message validation failed: %w", err)
	}
	if message.GetFrom().Email == "" {
		message.From(m.config.From.Email, m.config.From.Name)
	}

	to := message.GetTo()[0].Email
	m.logger.Printf("📧 Sending email to %s: %s", to, message.GetSubject())

	raw, err := buildEmail(message)
	if err != nil {
		return fmt.Errorf("failed to build email: %w", err)
	}

	if err := m.deliver(ctx, message, raw); err != nil {
		m.logger.Printf("❌ Email to %s failed: %v", to, err)
		return fmt.Errorf("smtp send failed: %w", err)
	}

	m.logger.Printf("✅ Email sent to %s", to)
	return nil
}

func (m *SMTPMailer) deliver(ctx context.Context, message *Message, raw []byte) error {
	addr := net.JoinHostPort(m.config.Host, strconv.Itoa(m.config.Port))

	deadline := time.Now().Add(m.config.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	dialer := net.Dialer{Deadline: deadline}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return err
	}

	client, err := smtp.NewClient(conn, m.config.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(nil); err != nil {
			return err
		}
	}
	if m.config.Username != "" {
		auth := smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(message.GetFrom().Email); err != nil {
		return err
	}
	for _, to := range message.GetTo() {
		if err := client.Rcpt(to.Email); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// buildEmail renders message as MIME: multipart/alternative for the text
// parts, wrapped in multipart/mixed when there are attachments.
func buildEmail(message *Message) ([]byte, error) {
	var buf bytes.Buffer

	toAddrs := make([]string, len(message.GetTo()))
	for i, to := range message.GetTo() {
		toAddrs[i] = to.String()
	}

	fmt.Fprintf(&buf, "From: %s\r\n", message.GetFrom().String())
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(toAddrs, ", "))
	if message.GetReplyTo() != nil {
		fmt.Fprintf(&buf, "Reply-To: %s\r\n", message.GetReplyTo().String())
	}
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", message.GetSubject()))
	fmt.Fprintf(&buf, "Date: %s\r\n", message.GetDate().Format(time.RFC1123Z))
	for key, value := range message.GetHeaders() {
		fmt.Fprintf(&buf, "%s: %s\r\n", key, value)
	}
	buf.WriteString("MIME-Version: 1.0\r\n")

	var content bytes.Buffer
	alternative, err := writeAlternative(&content, message)
	if err != nil {
		return nil, err
	}

	if len(message.GetAttachments()) == 0 {
		fmt.Fprintf(&buf, "Content-Type: %s\r\n\r\n", alternative)
		buf.Write(content.Bytes())
		return buf.Bytes(), nil
	}

	mixed := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", mixed.Boundary())

	part, err := mixed.CreatePart(textproto.MIMEHeader{"Content-Type": []string{alternative}})
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content.Bytes()); err != nil {
		return nil, err
	}

	for _, att := range message.GetAttachments() {
		if err := writeAttachment(mixed, att); err != nil {
			return nil, fmt.Errorf("failed to attach %s: %w", att.Filename, err)
		}
	}

	if err := mixed.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeAlternative writes the text parts to buf and returns the
// multipart/alternative content type that frames them.
func writeAlternative(buf *bytes.Buffer, message *Message) (string, error) {
	writer := multipart.NewWriter(buf)

	if message.GetBody() != "" {
		part, err := writer.CreatePart(textproto.MIMEHeader{
			"Content-Type": []string{"text/plain; charset=UTF-8"},
		})
		if err != nil {
			return "", err
		}
		if _, err := part.Write([]byte(message.GetBody())); err != nil {
			return "", err
		}
	}

	if message.GetHtmlBody() != "" {
		part, err := writer.CreatePart(textproto.MIMEHeader{
			"Content-Type": []string{"text/html; charset=UTF-8"},
		})
		if err != nil {
			return "", err
		}
		if _, err := part.Write([]byte(message.GetHtmlBody())); err != nil {
			return "", err
		}
	}

	if err := writer.Close(); err != nil {
		return "", err
	}
	return "multipart/alternative; boundary=" + writer.Boundary(), nil
}

func writeAttachment(writer *multipart.Writer, att Attachment) error {
	contentType := att.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type":              []string{contentType},
		"Content-Disposition":       []string{mime.FormatMediaType("attachment", map[string]string{"filename": att.Filename})},
		"Content-Transfer-Encoding": []string{"base64"},
	})
	if err != nil {
		return err
	}

	encoded := base64.StdEncoding.EncodeToString(att.Data)

	// 76 characters per line (RFC 2045)
	for i := 0; i < len(encoded); i += 76 {
		end := i + 76
		if end > len(encoded) {
			end = len(encoded)
		}
		if _, err := part.Write([]byte(encoded[i:end] + "\r\n")); err != nil {
			return err
		}
	}
	return nil
}
