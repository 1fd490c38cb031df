// Package workflow drives the visitor side of the consulting site: email
// verification, signup and weekend consultation booking.
//
// Verification is entirely local. The code is generated here, mailed through
// the relay and compared against this process's own memory, so a successful
// signup proves nothing to the relay or anyone else. There is no server
// session behind SignedUp. Treat it as a UX gate, not an authentication step.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/diagnosis/consult-relay/internal/domain"
	"github.com/diagnosis/consult-relay/internal/utils"
	"github.com/diagnosis/consult-relay/pkg/logger"
)

const (
	DefaultCodeTTL       = 10 * time.Minute
	DefaultSignupTimeout = 30 * time.Second

	minPasswordLength = 6
	minPhoneDigits    = 10
)

// RelayClient is the mail relay as seen by the workflow.
type RelayClient interface {
	SendVerification(ctx context.Context, email, code string) error
	SendBooking(ctx context.Context, b *domain.BookingRequest) (string, error)
}

// Hooks let a front end react to workflow transitions.
type Hooks struct {
	// SignupRequired runs when OpenBooking is called before signup. It may
	// complete the signup itself or return nil and let another goroutine do
	// it. ctx carries the signup timeout. A non-nil error ends the wait.
	SignupRequired func(ctx context.Context) error
}

type Controller struct {
	relay   RelayClient
	session *Session
	hooks   Hooks

	now           func() time.Time
	newID         func() string
	generateCode  func() (string, error)
	codeTTL       time.Duration
	signupTimeout time.Duration
}

type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithCodeTTL(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.codeTTL = d
		}
	}
}

func WithSignupTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.signupTimeout = d
		}
	}
}

func WithHooks(h Hooks) Option {
	return func(c *Controller) { c.hooks = h }
}

func WithIDGenerator(newID func() string) Option {
	return func(c *Controller) { c.newID = newID }
}

func NewController(relay RelayClient, session *Session, opts ...Option) *Controller {
	if session == nil {
		session = NewSession()
	}
	c := &Controller{
		relay:         relay,
		session:       session,
		now:           time.Now,
		newID:         uuid.NewString,
		generateCode:  generateCode,
		codeTTL:       DefaultCodeTTL,
		signupTimeout: DefaultSignupTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Session() *Session {
	return c.session
}

// RequestCode mails a fresh 6-digit code to email. The session only changes
// once the relay has accepted the message.
func (c *Controller) RequestCode(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !utils.IsValidEmail(email) {
		return ErrInvalidEmail
	}

	code, err := c.generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}
	hash, err := hashCode(code)
	if err != nil {
		return fmt.Errorf("failed to hash verification code: %w", err)
	}
	expiry := c.now().Add(c.codeTTL)

	if err := c.relay.SendVerification(ctx, email, code); err != nil {
		logger.ErrorContext(ctx, "Verification code delivery failed", "error", err, "email", email)
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	c.session.mu.Lock()
	c.session.pending = &pendingCode{hash: hash, expiry: expiry}
	if c.session.signup == Anonymous {
		c.session.signup = CodeRequested
	}
	c.session.mu.Unlock()

	logger.InfoContext(ctx, "Verification code sent", "email", email, "expires_at", expiry)
	return nil
}

// CompleteSignup checks code against the last one requested. A mismatch is
// reported before expiry, so a wrong code is always ErrCodeMismatch.
func (c *Controller) CompleteSignup(ctx context.Context, name, email, password, code string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	code = strings.TrimSpace(code)

	switch {
	case name == "":
		return ErrMissingField.withField("name")
	case email == "":
		return ErrMissingField.withField("email")
	case strings.TrimSpace(password) == "":
		return ErrMissingField.withField("password")
	case code == "":
		return ErrMissingField.withField("code")
	}
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	if !utils.IsSixDigitCode(code) {
		return ErrInvalidCode
	}

	c.session.mu.Lock()
	defer c.session.mu.Unlock()

	pending := c.session.pending
	if pending == nil {
		return ErrCodeMismatch
	}
	ok, err := codeMatches(code, pending.hash)
	if err != nil {
		return fmt.Errorf("failed to compare verification code: %w", err)
	}
	if !ok {
		return ErrCodeMismatch
	}
	if c.now().After(pending.expiry) {
		return ErrCodeExpired
	}

	c.session.markSignedUp(User{Name: name, Email: email})
	logger.InfoContext(ctx, "Signup completed", "email", email)
	return nil
}

// OpenBooking opens the booking form and returns its prefilled contents.
// Before signup it fires Hooks.SignupRequired and waits for the signup to
// finish, for ctx to end, or for the signup timeout.
func (c *Controller) OpenBooking(ctx context.Context) (BookingFields, error) {
	if c.session.SignupState() != SignedUp {
		if err := c.awaitSignup(ctx); err != nil {
			return BookingFields{}, err
		}
	}

	c.session.mu.Lock()
	defer c.session.mu.Unlock()

	if c.session.user != nil {
		if c.session.draft.Name == "" {
			c.session.draft.Name = c.session.user.Name
		}
		if c.session.draft.Email == "" {
			c.session.draft.Email = c.session.user.Email
		}
	}
	c.session.booking = BookingModalOpen
	return c.session.draft.clone(), nil
}

// awaitSignup bounds both the hook and the wait that follows it by the
// signup timeout.
func (c *Controller) awaitSignup(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, c.signupTimeout)
	defer cancel()

	if c.hooks.SignupRequired != nil {
		if err := c.hooks.SignupRequired(waitCtx); err != nil && c.session.SignupState() != SignedUp {
			return c.waitError(ctx, waitCtx, err)
		}
	}

	select {
	case <-c.session.signedUp:
		return nil
	case <-waitCtx.Done():
		return c.waitError(ctx, waitCtx, waitCtx.Err())
	}
}

// waitError reports ErrSignupTimeout when only the signup deadline expired.
func (c *Controller) waitError(parent, waitCtx context.Context, err error) error {
	if parent.Err() == nil && errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
		return ErrSignupTimeout
	}
	if parent.Err() != nil {
		return parent.Err()
	}
	return err
}

// ChangeMeetingDate applies the weekend rule as soon as a date is picked.
// A rejected date is cleared from the form.
func (c *Controller) ChangeMeetingDate(date string) error {
	date = strings.TrimSpace(date)
	err := checkMeetingDate(date)

	c.session.mu.Lock()
	defer c.session.mu.Unlock()
	if err != nil {
		c.session.draft.Date = ""
		return err
	}
	c.session.draft.Date = date
	return nil
}

func checkMeetingDate(date string) error {
	weekend, err := domain.IsWeekendDate(date)
	if err != nil {
		return ErrInvalidDate
	}
	if !weekend {
		return ErrWeekendOnly
	}
	return nil
}

// SubmitBooking validates the form and mails it to the admin through the
// relay. It returns the booking id the relay confirmed.
func (c *Controller) SubmitBooking(ctx context.Context, fields BookingFields) (string, error) {
	fields.normalize()

	c.session.mu.Lock()
	c.session.draft = fields.clone()
	c.session.booking = BookingModalOpen
	c.session.mu.Unlock()

	if err := c.validateBooking(fields); err != nil {
		if errors.Is(err, ErrWeekendOnly) || errors.Is(err, ErrInvalidDate) {
			c.session.mu.Lock()
			c.session.draft.Date = ""
			c.session.mu.Unlock()
		}
		return "", err
	}

	req := &domain.BookingRequest{
		BookingID: c.newID(),
		Name:      fields.Name,
		Email:     fields.Email,
		Phone:     fields.Phone,
		Gender:    fields.Gender,
		Country:   fields.Country,
		Date:      fields.Date,
		Time:      fields.Time,
		Services:  fields.Services,
		CreatedAt: domain.NewTimestamp(c.now().UTC()),
	}

	bookingID, err := c.relay.SendBooking(ctx, req)
	if err != nil {
		logger.ErrorContext(ctx, "Booking delivery failed", "error", err, "booking_id", req.BookingID)
		return "", fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	if bookingID == "" {
		bookingID = req.BookingID
	}

	c.session.mu.Lock()
	c.session.draft = BookingFields{}
	c.session.booking = BookingSubmitted
	c.session.lastBookingID = bookingID
	c.session.mu.Unlock()

	logger.InfoContext(ctx, "Booking submitted", "booking_id", bookingID, "date", req.Date)
	return bookingID, nil
}

// validateBooking reports an empty service list first, whatever else is wrong.
func (c *Controller) validateBooking(f BookingFields) error {
	if len(f.Services) == 0 {
		return ErrServicesRequired
	}
	if err := domain.Validator().Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return ErrMissingField.withField(verrs[0].Field())
		}
		return err
	}
	if !utils.IsValidEmail(f.Email) {
		return ErrInvalidEmail
	}
	if !utils.IsValidPhone(f.Phone, minPhoneDigits) {
		return ErrInvalidPhone
	}
	if err := checkMeetingDate(f.Date); err != nil {
		return err
	}
	if !domain.IsValidMeetingTime(f.Time) {
		return ErrInvalidTime
	}
	return nil
}
