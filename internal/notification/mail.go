// -----------------------------------------------------------------------------
// Attendee & Circle Mail
// -----------------------------------------------------------------------------
// MailListener turns events into SendMailJobs on the "mail" queue; the queue
// worker delivers them through a mail.Mailer.
//
//	ticket.purchased (paid)    → ticket mail with the QR code attached
//	ticket.purchased (pending) → payment instructions
//	payment.confirmed          → ticket mail with the QR code attached
//	ticket.refunded            → refund notice
//	circle.reviewed            → review result
// -----------------------------------------------------------------------------

package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/doujindesk/doujindesk-api/internal/models"
	"github.com/doujindesk/doujindesk-api/pkg/events"
	"github.com/doujindesk/doujindesk-api/pkg/mail"
	"github.com/doujindesk/doujindesk-api/pkg/queue"
)

const (
	MailQueue       = "mail"
	SendMailJobType = "mail.send"
)

// ----- Job -----

// SendMailJob delivers one message. Its fields are stored in the queue; the
// mailer is injected by the registry factory.
type SendMailJob struct {
	queue.BaseJob
	To          mail.Address      `json:"to"`
	Subject     string            `json:"subject"`
	Body        string            `json:"body"`
	Attachments []mail.Attachment `json:"attachments,omitempty"`

	mailer mail.Mailer
	logger events.Logger
}

func (j *SendMailJob) Type() string {
	return SendMailJobType
}

func (j *SendMailJob) Handle(ctx context.Context) error {
	msg := mail.NewMessage().
		To(j.To.Email, j.To.Name).
		Subject(j.Subject).
		Body(j.Body)
	for _, att := range j.Attachments {
		msg.AttachData(att.Filename, att.ContentType, att.Data)
	}
	return j.mailer.Send(ctx, msg)
}

func (j *SendMailJob) Failed(err error) {
	j.logger.Printf("❌ Giving up on mail to %s (%s): %v", j.To.Email, j.Subject, err)
}

func (j *SendMailJob) GetPayload() ([]byte, error) {
	return json.Marshal(j)
}

func (j *SendMailJob) SetPayload(data []byte) error {
	return json.Unmarshal(data, j)
}

// RegisterMailJobs lets queue drivers rebuild SendMailJobs.
func RegisterMailJobs(registry *queue.Registry, mailer mail.Mailer, logger events.Logger) {
	registry.Register(SendMailJobType, func() queue.Job {
		return &SendMailJob{mailer: mailer, logger: logger}
	})
}

// ----- Listener -----

// TicketQRRenderer renders the QR PNG of a purchase.
type TicketQRRenderer interface {
	RenderTicketQR(purchase *models.TicketPurchase) ([]byte, error)
}

type MailListener struct {
	queue     queue.Queue
	qr        TicketQRRenderer
	mailer    mail.Mailer
	eventName string
	logger    events.Logger
}

// NewMailListener builds jobs for mailer; eventName is the convention name
// used in subjects.
func NewMailListener(q queue.Queue, qr TicketQRRenderer, mailer mail.Mailer, eventName string, logger events.Logger) *MailListener {
	return &MailListener{
		queue:     q,
		qr:        qr,
		mailer:    mailer,
		eventName: eventName,
		logger:    logger,
	}
}

func (l *MailListener) GetName() string {
	return "MailListener"
}

func (l *MailListener) Handle(event events.Event) error {
	job, err := l.buildJob(event)
	if err != nil || job == nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := l.queue.Push(ctx, job, MailQueue); err != nil {
		return fmt.Errorf("failed to queue mail to %s: %w", job.To.Email, err)
	}
	return nil
}

func (l *MailListener) newJob(to mail.Address, subject string, lines ...string) *SendMailJob {
	return &SendMailJob{
		To:      to,
		Subject: subject,
		Body:    strings.Join(lines, "\n"),
		mailer:  l.mailer,
		logger:  l.logger,
	}
}

func (l *MailListener) buildJob(event events.Event) (*SendMailJob, error) {
	switch payload := event.Payload().(type) {
	case *models.TicketPurchase:
		to := mail.Address{Email: payload.AttendeeEmail, Name: payload.AttendeeName}

		switch {
		case event.Name() == events.EventTicketRefunded:
			return l.newJob(to, fmt.Sprintf("[%s] Refund for %s", l.eventName, payload.ID),
				fmt.Sprintf("Hi %s,", payload.AttendeeName),
				"",
				fmt.Sprintf("Your purchase %s (%s x%d) has been refunded: %s %s.",
					payload.ID, payload.TicketTypeName, payload.Quantity, payload.ChargedAmount().String(), payload.Currency),
				"The QR code of this purchase is no longer valid.",
			), nil

		case payload.IsPaid():
			return l.ticketJob(to, payload)

		case event.Name() == events.EventTicketPurchased && payload.PaymentStatus == models.PaymentStatusPending:
			return l.newJob(to, fmt.Sprintf("[%s] Complete your payment for %s", l.eventName, payload.ID),
				fmt.Sprintf("Hi %s,", payload.AttendeeName),
				"",
				fmt.Sprintf("We reserved %s x%d for you.", payload.TicketTypeName, payload.Quantity),
				fmt.Sprintf("Please transfer %s %s using the reference %s.",
					payload.ChargedAmount().String(), payload.Currency, payload.PaymentRef),
				"Your ticket is sent as soon as the payment is confirmed.",
			), nil
		}
		return nil, nil

	case *models.Circle:
		if event.Name() != events.EventCircleReviewed {
			return nil, nil
		}
		lines := []string{
			fmt.Sprintf("Hi %s,", payload.Name),
			"",
			fmt.Sprintf("Your circle application has been reviewed. Status: %s.", payload.Status),
		}
		if payload.ReviewNotes != "" {
			lines = append(lines, "", "Notes from the committee:", payload.ReviewNotes)
		}
		return l.newJob(mail.Address{Email: payload.Email, Name: payload.Name},
			fmt.Sprintf("[%s] Circle application %s", l.eventName, payload.Status), lines...), nil
	}

	return nil, nil
}

func (l *MailListener) ticketJob(to mail.Address, purchase *models.TicketPurchase) (*SendMailJob, error) {
	png, err := l.qr.RenderTicketQR(purchase)
	if err != nil {
		return nil, fmt.Errorf("ticket mail for %s: %w", purchase.ID, err)
	}

	job := l.newJob(to, fmt.Sprintf("[%s] Your ticket %s", l.eventName, purchase.ID),
		fmt.Sprintf("Hi %s,", purchase.AttendeeName),
		"",
		fmt.Sprintf("Thank you for your purchase of %s x%d.", purchase.TicketTypeName, purchase.Quantity),
		fmt.Sprintf("Valid %s - %s.", purchase.ValidFrom.Format("02 Jan 2006"), purchase.ValidUntil.Format("02 Jan 2006")),
		"Show the attached QR code at the gate.",
	)
	job.Attachments = []mail.Attachment{{
		Filename:    purchase.ID + "-qr.png",
		ContentType: "image/png",
		Data:        png,
	}}
	return job, nil
}

// RegisterMail subscribes listener to the events that send mail.
func RegisterMail(dispatcher *events.Dispatcher, listener *MailListener) {
	dispatcher.Subscribe([]string{
		events.EventTicketPurchased,
		events.EventPaymentConfirmed,
		events.EventTicketRefunded,
		events.EventCircleReviewed,
	}, listener)
}
