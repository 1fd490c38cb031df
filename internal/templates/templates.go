// Package templates renders the transactional emails sent by the relay.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"github.com/diagnosis/consult-relay/internal/domain"
)

//go:embed mail/*.html mail/*.txt
var files embed.FS

const (
	Verification = "verification"
	Booking      = "booking"
)

// Email is a rendered message body pair plus its subject.
type Email struct {
	Subject string
	HTML    string
	Text    string
}

type VerificationData struct {
	Brand            string
	Code             string
	ExpiresInMinutes int
	Year             int
}

type BookingData struct {
	Brand    string
	Booking  *domain.BookingRequest
	Services string
	Year     int
}

type Renderer struct {
	brand   string
	codeTTL time.Duration
	html    *htmltemplate.Template
	text    *texttemplate.Template
	now     func() time.Time
}

func NewRenderer(brand string, codeTTL time.Duration) (*Renderer, error) {
	html, err := htmltemplate.ParseFS(files, "mail/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse html templates: %w", err)
	}
	text, err := texttemplate.ParseFS(files, "mail/*.txt")
	if err != nil {
		return nil, fmt.Errorf("parse text templates: %w", err)
	}
	return &Renderer{
		brand:   brand,
		codeTTL: codeTTL,
		html:    html,
		text:    text,
		now:     time.Now,
	}, nil
}

func (r *Renderer) Verification(code string) (Email, error) {
	data := VerificationData{
		Brand:            r.brand,
		Code:             code,
		ExpiresInMinutes: int(r.codeTTL.Minutes()),
		Year:             r.now().Year(),
	}
	return r.render(Verification, fmt.Sprintf("%s - Your Verification Code", r.brand), data)
}

func (r *Renderer) Booking(b *domain.BookingRequest) (Email, error) {
	data := BookingData{
		Brand:    r.brand,
		Booking:  b,
		Services: b.ServiceList(),
		Year:     r.now().Year(),
	}
	return r.render(Booking, fmt.Sprintf("New Consultation Booking - %s", b.Name), data)
}

func (r *Renderer) render(name, subject string, data any) (Email, error) {
	var html, text bytes.Buffer
	if err := r.html.ExecuteTemplate(&html, name+".html", data); err != nil {
		return Email{}, fmt.Errorf("render %s html: %w", name, err)
	}
	if err := r.text.ExecuteTemplate(&text, name+".txt", data); err != nil {
		return Email{}, fmt.Errorf("render %s text: %w", name, err)
	}
	return Email{Subject: subject, HTML: html.String(), Text: text.String()}, nil
}
