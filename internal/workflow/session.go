package workflow

import (
	"strings"
	"sync"
	"time"
)

type SignupState int

const (
	Anonymous SignupState = iota
	CodeRequested
	SignedUp
)

func (s SignupState) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case CodeRequested:
		return "code_requested"
	case SignedUp:
		return "signed_up"
	default:
		return "unknown"
	}
}

type BookingState int

const (
	NoBooking BookingState = iota
	BookingModalOpen
	BookingSubmitted
)

func (s BookingState) String() string {
	switch s {
	case NoBooking:
		return "no_booking"
	case BookingModalOpen:
		return "modal_open"
	case BookingSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

type User struct {
	Name  string
	Email string
}

// BookingFields is the booking form as the user filled it in.
type BookingFields struct {
	Name     string   `json:"name" validate:"required"`
	Email    string   `json:"email" validate:"required"`
	Phone    string   `json:"phone" validate:"required"`
	Gender   string   `json:"gender"`
	Country  string   `json:"country"`
	Date     string   `json:"date" validate:"required"`
	Time     string   `json:"time" validate:"required"`
	Services []string `json:"services"`
}

func (f *BookingFields) normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Gender = strings.TrimSpace(f.Gender)
	f.Country = strings.TrimSpace(f.Country)
	f.Date = strings.TrimSpace(f.Date)
	f.Time = strings.TrimSpace(f.Time)

	var services []string
	for _, s := range f.Services {
		if s = strings.TrimSpace(s); s != "" {
			services = append(services, s)
		}
	}
	f.Services = services
}

func (f BookingFields) clone() BookingFields {
	f.Services = append([]string(nil), f.Services...)
	return f
}

type pendingCode struct {
	hash   string
	expiry time.Time
}

// Session holds everything the workflow knows about one visitor. It lives in
// memory only and is discarded with the process.
type Session struct {
	mu sync.Mutex

	signup  SignupState
	booking BookingState

	user    *User
	pending *pendingCode

	draft         BookingFields
	lastBookingID string

	// closed on the transition to SignedUp
	signedUp chan struct{}
}

func NewSession() *Session {
	return &Session{signedUp: make(chan struct{})}
}

func (s *Session) SignupState() SignupState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signup
}

func (s *Session) BookingState() BookingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.booking
}

func (s *Session) User() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// Draft returns a copy of the booking form contents.
func (s *Session) Draft() BookingFields {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.clone()
}

func (s *Session) LastBookingID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBookingID
}

// CloseBooking dismisses the booking modal without submitting.
func (s *Session) CloseBooking() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.booking == BookingModalOpen {
		s.booking = NoBooking
	}
}

// must be called with mu held
func (s *Session) markSignedUp(u User) {
	s.user = &u
	if s.signup != SignedUp {
		s.signup = SignedUp
		close(s.signedUp)
	}
}
