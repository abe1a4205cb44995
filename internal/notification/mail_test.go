package notification

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"

	"github.com/doujindesk/doujindesk-api/internal/models"
	"github.com/doujindesk/doujindesk-api/pkg/events"
	"github.com/doujindesk/doujindesk-api/pkg/mail"
	"github.com/doujindesk/doujindesk-api/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQR struct{ err error }

func (f fakeQR) RenderTicketQR(purchase *models.TicketPurchase) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("png:" + purchase.ID), nil
}

type capturingMailer struct {
	mu   sync.Mutex
	sent []*mail.Message
}

func (m *capturingMailer) Send(ctx context.Context, message *mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, message)
	return nil
}

func newMailFixture(qr TicketQRRenderer) (*MailListener, *queue.MemoryQueue, *capturingMailer) {
	logger := log.New(io.Discard, "", 0)
	q := queue.NewMemoryQueue(logger)
	mailer := &capturingMailer{}
	return NewMailListener(q, qr, mailer, "DoujinDesk 2026", logger), q, mailer
}

func popMail(t *testing.T, q *queue.MemoryQueue) *SendMailJob {
	t.Helper()
	job, err := q.Pop(context.Background(), MailQueue)
	require.NoError(t, err)
	require.NotNil(t, job)
	return job.(*SendMailJob)
}

func TestMailListener_PaidPurchaseSendsTicket(t *testing.T) {
	listener, q, mailer := newMailFixture(fakeQR{})

	require.NoError(t, listener.Handle(events.NewBaseEvent(events.EventTicketPurchased, paidPurchase())))

	job := popMail(t, q)
	assert.Equal(t, "aoi@example.com", job.To.Email)
	assert.Equal(t, "[DoujinDesk 2026] Your ticket PUR-1", job.Subject)
	require.Len(t, job.Attachments, 1)
	assert.Equal(t, "PUR-1-qr.png", job.Attachments[0].Filename)
	assert.Equal(t, []byte("png:PUR-1"), job.Attachments[0].Data)

	require.NoError(t, job.Handle(context.Background()))
	require.Len(t, mailer.sent, 1)
	assert.Len(t, mailer.sent[0].GetAttachments(), 1)
}

func TestMailListener_PendingPurchaseSendsInstructions(t *testing.T) {
	listener, q, _ := newMailFixture(fakeQR{})

	pending := paidPurchase()
	pending.PaymentStatus = models.PaymentStatusPending
	pending.PaymentRef = "BT-42"

	require.NoError(t, listener.Handle(events.NewBaseEvent(events.EventTicketPurchased, pending)))

	job := popMail(t, q)
	assert.Contains(t, job.Subject, "Complete your payment")
	assert.Contains(t, job.Body, "BT-42")
	assert.Empty(t, job.Attachments)
}

func TestMailListener_RefundAndCircleReview(t *testing.T) {
	listener, q, _ := newMailFixture(fakeQR{})

	refunded := paidPurchase()
	refunded.PaymentStatus = models.PaymentStatusRefunded
	require.NoError(t, listener.Handle(events.NewBaseEvent(events.EventTicketRefunded, refunded)))
	assert.Contains(t, popMail(t, q).Subject, "Refund for PUR-1")

	circle := &models.Circle{Name: "Studio Hanabi", Email: "hanabi@example.com", Status: models.CircleStatusWaitlist, ReviewNotes: "Booth map is full"}
	require.NoError(t, listener.Handle(events.NewBaseEvent(events.EventCircleReviewed, circle)))
	job := popMail(t, q)
	assert.Equal(t, "hanabi@example.com", job.To.Email)
	assert.Contains(t, job.Body, "Booth map is full")

	require.NoError(t, listener.Handle(events.NewBaseEvent(events.EventCircleSubmitted, circle)))
	size, err := q.Size(context.Background(), MailQueue)
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestMailListener_QRFailure(t *testing.T) {
	listener, _, _ := newMailFixture(fakeQR{err: errors.New("encoder broke")})

	err := listener.Handle(events.NewBaseEvent(events.EventPaymentConfirmed, paidPurchase()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PUR-1")
}

func TestSendMailJob_RoundTripsThroughRegistry(t *testing.T) {
	logger := log.New(io.Discard, "", 0)
	mailer := &capturingMailer{}
	registry := queue.NewRegistry()
	RegisterMailJobs(registry, mailer, logger)

	original := &SendMailJob{
		To:          mail.Address{Email: "aoi@example.com", Name: "Aoi"},
		Subject:     "Your ticket",
		Body:        "See you",
		Attachments: []mail.Attachment{{Filename: "qr.png", ContentType: "image/png", Data: []byte{1, 2, 3}}},
	}
	data, err := original.GetPayload()
	require.NoError(t, err)

	rebuilt, err := registry.Create(SendMailJobType)
	require.NoError(t, err)
	require.NoError(t, rebuilt.SetPayload(data))
	require.NoError(t, rebuilt.Handle(context.Background()))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "Your ticket", mailer.sent[0].GetSubject())
	assert.Equal(t, []byte{1, 2, 3}, mailer.sent[0].GetAttachments()[0].Data)
}
