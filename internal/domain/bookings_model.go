package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/diagnosis/consult-relay/internal/utils"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	timeWithSecondsLayout = "15:04:05"
)

// BookingRequest is a consultation request as it travels from the client to the
// relay. It exists only long enough to be rendered into the admin email.
type BookingRequest struct {
	BookingID string    `json:"bookingId"`
	Name      string    `json:"name" validate:"required"`
	Email     string    `json:"email" validate:"required"`
	Phone     string    `json:"phone"`
	Gender    string    `json:"gender"`
	Country   string    `json:"country"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Services  []string  `json:"services"`
	CreatedAt Timestamp `json:"createdAt"`
}

// Timestamp holds createdAt exactly as the client sent it. Browsers send
// RFC3339 strings, epoch milliseconds or locale strings, and nothing
// downstream interprets the value.
type Timestamp struct {
	raw json.RawMessage
}

// NewTimestamp encodes t as an RFC3339 string.
func NewTimestamp(t time.Time) Timestamp {
	raw, _ := json.Marshal(t.Format(time.RFC3339Nano))
	return Timestamp{raw: raw}
}

// IsZero reports whether the value is missing or null.
func (t Timestamp) IsZero() bool {
	return len(t.raw) == 0 || bytes.Equal(t.raw, []byte("null"))
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return t.raw, nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	t.raw = append(t.raw[:0], b...)
	return nil
}

func (t Timestamp) String() string {
	var s string
	if err := json.Unmarshal(t.raw, &s); err == nil {
		return s
	}
	return string(t.raw)
}

type BookingRes struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	BookingID string `json:"bookingId"`
}

// Normalize trims every text field, lowercases the email and drops blank
// service entries.
func (b *BookingRequest) Normalize() {
	b.Name = strings.TrimSpace(b.Name)
	b.Email = utils.NormalizeEmail(b.Email)
	b.Phone = strings.TrimSpace(b.Phone)
	b.Gender = strings.TrimSpace(b.Gender)
	b.Country = strings.TrimSpace(b.Country)
	b.Date = strings.TrimSpace(b.Date)
	b.Time = strings.TrimSpace(b.Time)

	services := b.Services[:0]
	for _, s := range b.Services {
		if s = strings.TrimSpace(s); s != "" {
			services = append(services, s)
		}
	}
	b.Services = services
}

// Validate applies the relay-side rule: name and email must be present.
func (b *BookingRequest) Validate() error {
	return validateStruct(b)
}

func (b *BookingRequest) ServiceList() string {
	return strings.Join(b.Services, ", ")
}

// ParseMeetingDate parses a YYYY-MM-DD calendar date in UTC.
func ParseMeetingDate(date string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return d, nil
}

func IsWeekend(d time.Time) bool {
	day := d.Weekday()
	return day == time.Saturday || day == time.Sunday
}

// IsWeekendDate reports whether a YYYY-MM-DD date falls on Saturday or Sunday.
func IsWeekendDate(date string) (bool, error) {
	d, err := ParseMeetingDate(date)
	if err != nil {
		return false, err
	}
	return IsWeekend(d), nil
}

// IsValidMeetingTime accepts HH:MM and HH:MM:SS, the two forms a time input
// submits.
func IsValidMeetingTime(t string) bool {
	t = strings.TrimSpace(t)
	for _, layout := range []string{TimeLayout, timeWithSecondsLayout} {
		if _, err := time.Parse(layout, t); err == nil {
			return true
		}
	}
	return false
}
