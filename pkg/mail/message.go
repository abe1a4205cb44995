// -----------------------------------------------------------------------------
// Email Message Builder
// -----------------------------------------------------------------------------
//
//	msg := mail.NewMessage().
//	    To("aoi@example.com", "Aoi").
//	    Subject("Your DoujinDesk ticket").
//	    Body("See you at the venue!").
//	    AttachData("ticket-qr.png", "image/png", png)
// -----------------------------------------------------------------------------

package mail

import (
	"errors"
	"fmt"
	"net/mail"
	"time"
)

// Address is an email address with an optional display name.
type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// String renders "Name <email>" through net/mail so names are quoted and
// encoded when needed.
func (a Address) String() string {
	return (&mail.Address{Name: a.Name, Address: a.Email}).String()
}

// Attachment is an in-memory file attached to a message.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

type Message struct {
	from        Address
	to          []Address
	replyTo     *Address
	subject     string
	body        string
	htmlBody    string
	attachments []Attachment
	headers     map[string]string
	date        time.Time
}

func NewMessage() *Message {
	return &Message{
		headers: make(map[string]string),
		date:    time.Now(),
	}
}

// From sets the sender. Drivers fall back to their configured sender.
func (m *Message) From(email string, name string) *Message {
	m.from = Address{Email: email, Name: name}
	return m
}

func (m *Message) To(email string, name string) *Message {
	m.to = append(m.to, Address{Email: email, Name: name})
	return m
}

func (m *Message) ReplyTo(email string, name string) *Message {
	m.replyTo = &Address{Email: email, Name: name}
	return m
}

func (m *Message) Subject(subject string) *Message {
	m.subject = subject
	return m
}

// Body sets the plain text part.
func (m *Message) Body(body string) *Message {
	m.body = body
	return m
}

// Html sets the HTML part.
func (m *Message) Html(html string) *Message {
	m.htmlBody = html
	return m
}

func (m *Message) AttachData(filename, contentType string, data []byte) *Message {
	m.attachments = append(m.attachments, Attachment{Filename: filename, ContentType: contentType, Data: data})
	return m
}

func (m *Message) Header(key, value string) *Message {
	m.headers[key] = value
	return m
}

// Validate checks that the message can be sent.
func (m *Message) Validate() error {
	if len(m.to) == 0 {
		return errors.New("at least one recipient is required")
	}
	for _, to := range m.to {
		if _, err := mail.ParseAddress(to.Email); err != nil {
			return fmt.Errorf("invalid recipient %q: %w", to.Email, err)
		}
	}
	if m.subject == "" {
		return errors.New("subject is required")
	}
	if m.body == "" && m.htmlBody == "" {
		return errors.New("body or html body is required")
	}
	return nil
}

func (m *Message) GetFrom() Address              { return m.from }
func (m *Message) GetTo() []Address              { return m.to }
func (m *Message) GetReplyTo() *Address          { return m.replyTo }
func (m *Message) GetSubject() string            { return m.subject }
func (m *Message) GetBody() string               { return m.body }
func (m *Message) GetHtmlBody() string           { return m.htmlBody }
func (m *Message) GetAttachments() []Attachment  { return m.attachments }
func (m *Message) GetHeaders() map[string]string { return m.headers }
func (m *Message) GetDate() time.Time            { return m.date }
