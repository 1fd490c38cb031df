package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diagnosis/consult-relay/internal/domain"
	"github.com/diagnosis/consult-relay/internal/platform/mailer"
	"github.com/diagnosis/consult-relay/internal/templates"
	"github.com/diagnosis/consult-relay/pkg/config"
	"github.com/diagnosis/consult-relay/pkg/events"
)

type mockMailer struct {
	sent    []mailer.Message
	sendErr error
}

func (m *mockMailer) Send(_ context.Context, msg mailer.Message) (string, error) {
	m.sent = append(m.sent, msg)
	if m.sendErr != nil {
		return "", m.sendErr
	}
	return "mock-id", nil
}

type published struct {
	subject string
	event   events.MailEvent
}

type mockPublisher struct {
	events []published
	err    error
}

func (p *mockPublisher) Publish(_ context.Context, subject string, data interface{}) error {
	p.events = append(p.events, published{subject: subject, event: data.(events.MailEvent)})
	return p.err
}

func (p *mockPublisher) Close() error { return nil }

func newTestService(t *testing.T) (*relayService, *mockMailer, *mockPublisher) {
	t.Helper()

	renderer, err := templates.NewRenderer("ShreeAI", 10*time.Minute)
	require.NoError(t, err)

	cfg := &config.Config{Email: config.EmailConfig{
		Brand:        "ShreeAI",
		SenderEmail:  "noreply@example.com",
		ReplyToEmail: "support@example.com",
		AdminEmail:   "admin@example.com",
	}}

	m := &mockMailer{}
	p := &mockPublisher{}
	svc := NewRelayService(renderer, m, p, cfg).(*relayService)
	svc.now = func() time.Time { return time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC) }
	return svc, m, p
}

func TestSendVerification_Success(t *testing.T) {
	svc, m, p := newTestService(t)

	err := svc.SendVerification(context.Background(), &domain.VerificationReq{Email: " a@b.com ", Code: "123456"})
	require.NoError(t, err)

	require.Len(t, m.sent, 1)
	msg := m.sent[0]
	assert.Equal(t, "a@b.com", msg.ToEmail)
	assert.Equal(t, "ShreeAI", msg.FromName)
	assert.Equal(t, "support@example.com", msg.ReplyToEmail)
	assert.Equal(t, "ShreeAI Support", msg.ReplyToName)
	assert.Equal(t, "ShreeAI - Your Verification Code", msg.Subject)
	assert.Contains(t, msg.HTML, "123456")
	assert.Contains(t, msg.Text, "123456")

	require.Len(t, p.events, 1)
	assert.Equal(t, events.MailVerificationSent, p.events[0].subject)
	assert.Equal(t, "mock-id", p.events[0].event.MessageID)
}

func TestSendVerification_MissingField(t *testing.T) {
	svc, m, _ := newTestService(t)

	for _, req := range []*domain.VerificationReq{
		{Email: "a@b.com"},
		{Code: "123456"},
		{Email: "   ", Code: "123456"},
	} {
		err := svc.SendVerification(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	}
	assert.Empty(t, m.sent)
}

func TestSendVerification_ProviderFailure(t *testing.T) {
	svc, m, p := newTestService(t)
	m.sendErr = errors.New("Unauthorized")

	err := svc.SendVerification(context.Background(), &domain.VerificationReq{Email: "a@b.com", Code: "123456"})

	var derr *DeliveryError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "Unauthorized", derr.Error())

	require.Len(t, p.events, 1)
	assert.Equal(t, events.MailDeliveryFailed, p.events[0].subject)
	assert.Equal(t, "Unauthorized", p.events[0].event.Error)
}

func TestSendBooking_Success(t *testing.T) {
	svc, m, p := newTestService(t)

	id, err := svc.SendBooking(context.Background(), &domain.BookingRequest{
		BookingID: "X",
		Name:      "Asha",
		Email:     "asha@example.com",
		Phone:     "555-123-4567",
		Date:      "2024-01-06",
		Time:      "10:00",
		Services:  []string{"AI Strategy"},
	})
	require.NoError(t, err)
	assert.Equal(t, "X", id)

	require.Len(t, m.sent, 1)
	msg := m.sent[0]
	assert.Equal(t, "admin@example.com", msg.ToEmail)
	assert.Equal(t, "ShreeAI Booking System", msg.FromName)
	assert.Equal(t, "asha@example.com", msg.ReplyToEmail)
	assert.Equal(t, "Asha", msg.ReplyToName)
	assert.Equal(t, "New Consultation Booking - Asha", msg.Subject)
	assert.Contains(t, msg.HTML, "AI Strategy")

	require.Len(t, p.events, 1)
	assert.Equal(t, events.MailBookingSent, p.events[0].subject)
	assert.Equal(t, "X", p.events[0].event.BookingID)
}

func TestSendBooking_AssignsMissingID(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := &domain.BookingRequest{Name: "Asha", Email: "asha@example.com"}
	id, err := svc.SendBooking(context.Background(), req)

	require.NoError(t, err)
	assert.Len(t, id, 36)
	assert.Equal(t, 4, strings.Count(id, "-"))
	assert.False(t, req.CreatedAt.IsZero())
}

func TestSendBooking_NoDeduplication(t *testing.T) {
	svc, m, _ := newTestService(t)

	for i := 0; i < 2; i++ {
		_, err := svc.SendBooking(context.Background(), &domain.BookingRequest{BookingID: "X", Name: "Asha", Email: "asha@example.com"})
		require.NoError(t, err)
	}
	assert.Len(t, m.sent, 2)
}

func TestSendBooking_MissingNameOrEmail(t *testing.T) {
	svc, m, _ := newTestService(t)

	_, err := svc.SendBooking(context.Background(), &domain.BookingRequest{Email: "asha@example.com"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.SendBooking(context.Background(), &domain.BookingRequest{Name: "Asha"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	assert.Empty(t, m.sent)
}

func TestSendBooking_PublishFailureIgnored(t *testing.T) {
	svc, _, p := newTestService(t)
	p.err = errors.New("nats down")

	id, err := svc.SendBooking(context.Background(), &domain.BookingRequest{BookingID: "X", Name: "Asha", Email: "asha@example.com"})

	require.NoError(t, err)
	assert.Equal(t, "X", id)
}
