package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/diagnosis/consult-relay/internal/domain"
	"github.com/diagnosis/consult-relay/internal/platform/mailer"
	"github.com/diagnosis/consult-relay/internal/templates"
	"github.com/diagnosis/consult-relay/pkg/config"
	"github.com/diagnosis/consult-relay/pkg/events"
	"github.com/diagnosis/consult-relay/pkg/logger"
)

// ErrInvalidRequest marks input the relay refuses before rendering anything.
var ErrInvalidRequest = errors.New("invalid request")

// DeliveryError wraps a failure reported by the mail provider.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return e.Err.Error()
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

type RelayService interface {
	SendVerification(ctx context.Context, req *domain.VerificationReq) error
	SendBooking(ctx context.Context, req *domain.BookingRequest) (string, error)
}

type relayService struct {
	renderer  *templates.Renderer
	mailer    mailer.Service
	publisher events.Publisher
	email     config.EmailConfig
	now       func() time.Time
}

func NewRelayService(
	renderer *templates.Renderer,
	mailer mailer.Service,
	publisher events.Publisher,
	cfg *config.Config,
) RelayService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &relayService{
		renderer:  renderer,
		mailer:    mailer,
		publisher: publisher,
		email:     cfg.Email,
		now:       time.Now,
	}
}

func (s *relayService) SendVerification(ctx context.Context, req *domain.VerificationReq) error {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	logger.InfoContext(ctx, "Sending verification email", "email", req.Email)

	mail, err := s.renderer.Verification(req.Code)
	if err != nil {
		return fmt.Errorf("failed to render verification email: %w", err)
	}

	msgID, err := s.mailer.Send(ctx, mailer.Message{
		ToEmail:      req.Email,
		FromName:     s.email.Brand,
		ReplyToEmail: s.email.ReplyToEmail,
		ReplyToName:  s.email.Brand + " Support",
		Subject:      mail.Subject,
		Text:         mail.Text,
		HTML:         mail.HTML,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Verification email failed", "error", err, "email", req.Email)
		s.publish(ctx, events.MailDeliveryFailed, events.MailEvent{
			Type:      domain.EmailTypeVerification,
			Recipient: req.Email,
			Error:     err.Error(),
		})
		return &DeliveryError{Err: err}
	}

	logger.InfoContext(ctx, "Verification email sent", "email", req.Email, "message_id", msgID)
	s.publish(ctx, events.MailVerificationSent, events.MailEvent{
		Type:      domain.EmailTypeVerification,
		Recipient: req.Email,
		MessageID: msgID,
	})
	return nil
}

func (s *relayService) SendBooking(ctx context.Context, req *domain.BookingRequest) (string, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if req.BookingID == "" {
		req.BookingID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = domain.NewTimestamp(s.now().UTC())
	}

	logger.InfoContext(ctx, "Sending booking email", "name", req.Name, "booking_id", req.BookingID)

	mail, err := s.renderer.Booking(req)
	if err != nil {
		return "", fmt.Errorf("failed to render booking email: %w", err)
	}

	msgID, err := s.mailer.Send(ctx, mailer.Message{
		ToEmail:      s.email.AdminEmail,
		FromName:     s.email.Brand + " Booking System",
		ReplyToEmail: req.Email,
		ReplyToName:  req.Name,
		Subject:      mail.Subject,
		Text:         mail.Text,
		HTML:         mail.HTML,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Booking email failed", "error", err, "booking_id", req.BookingID)
		s.publish(ctx, events.MailDeliveryFailed, events.MailEvent{
			Type:      domain.EmailTypeBooking,
			Recipient: s.email.AdminEmail,
			BookingID: req.BookingID,
			Error:     err.Error(),
		})
		return "", &DeliveryError{Err: err}
	}

	logger.InfoContext(ctx, "Booking email sent", "booking_id", req.BookingID, "message_id", msgID)
	s.publish(ctx, events.MailBookingSent, events.MailEvent{
		Type:      domain.EmailTypeBooking,
		Recipient: s.email.AdminEmail,
		BookingID: req.BookingID,
		MessageID: msgID,
	})
	return req.BookingID, nil
}

// publish never fails the request; the email has already been handled.
func (s *relayService) publish(ctx context.Context, subject string, ev events.MailEvent) {
	ev.RequestID = logger.RequestID(ctx)
	ev.OccurredAt = s.now().UTC()
	if err := s.publisher.Publish(ctx, subject, ev); err != nil {
		logger.ErrorContext(ctx, "Failed to publish mail event", "error", err, "subject", subject)
	}
}
