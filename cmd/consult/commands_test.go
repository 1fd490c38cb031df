package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diagnosis/consult-relay/internal/domain"
	"github.com/diagnosis/consult-relay/internal/workflow"
	"github.com/diagnosis/consult-relay/pkg/config"
	"github.com/diagnosis/consult-relay/pkg/events"
)

type fakeRelay struct {
	mu          sync.Mutex
	codes       chan string
	booking     *domain.BookingRequest
	failBooking bool
}

func (f *fakeRelay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/send-verification":
		var req domain.VerificationReq
		json.NewDecoder(r.Body).Decode(&req)
		w.Write([]byte(`{"success":true,"message":"Verification email sent successfully"}`))
		f.codes <- req.Code
	case "/api/send-booking":
		var req domain.BookingRequest
		json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failBooking {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"success":false,"error":"Failed to send booking email","details":"Unauthorized"}`))
			return
		}
		f.booking = &req
		fmt.Fprintf(w, `{"success":true,"message":"Booking email sent successfully","bookingId":%q}`, req.BookingID)
	default:
		http.NotFound(w, r)
	}
}

func testConfig(relayURL string) *config.Config {
	return &config.Config{Client: config.ClientConfig{
		RelayURL:      relayURL,
		SignupTimeout: 5 * time.Second,
		CodeTTL:       10 * time.Minute,
	}}
}

func execute(t *testing.T, cfg *config.Config, in io.Reader, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd(cfg)
	cmd.SetIn(in)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestCheckDate(t *testing.T) {
	cfg := testConfig("http://localhost:0")

	out, err := execute(t, cfg, nil, "check-date", "2024-01-06")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-01-06 is a Saturday: available")

	_, err = execute(t, cfg, nil, "check-date", "2024-01-08")
	assert.ErrorIs(t, err, workflow.ErrWeekendOnly)

	_, err = execute(t, cfg, nil, "check-date", "next saturday")
	assert.Error(t, err)
}

func TestEvents_RequiresNATS(t *testing.T) {
	_, err := execute(t, testConfig("http://localhost:0"), nil, "events")
	assert.ErrorContains(t, err, "no NATS URL configured")
}

func TestFormatEvent(t *testing.T) {
	line := formatEvent(events.MailDeliveryFailed, events.MailEvent{
		Recipient:  "admin@example.com",
		BookingID:  "X",
		Error:      "Unauthorized",
		OccurredAt: time.Date(2024, 1, 6, 10, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, "2024-01-06T10:00:00Z mail.delivery.failed to=admin@example.com booking=X error=Unauthorized", line)
}

func TestBook_SignupThenBooking(t *testing.T) {
	relay := &fakeRelay{codes: make(chan string, 1)}
	srv := httptest.NewServer(relay)
	defer srv.Close()

	pr, pw := io.Pipe()
	go func() {
		defer pw.Close()
		io.WriteString(pw, "a@b.com\n")
		code := <-relay.codes
		io.WriteString(pw, "Asha\nsecret1\n"+code+"\n")
		// name and email are prefilled from the signup
		io.WriteString(pw, "\n\n5551234567\n\nIndia\n")
		// a weekday is rejected and asked again
		io.WriteString(pw, "2024-01-08\n2024-01-06\n")
		io.WriteString(pw, "10:00\nAI Strategy, Automation\n")
	}()

	out, err := execute(t, testConfig(srv.URL), pr, "book")
	require.NoError(t, err, out)

	assert.Contains(t, out, "Welcome, Asha!")
	assert.Contains(t, out, "Please select Saturday or Sunday only.")
	assert.Contains(t, out, "Booking confirmed! Reference:")

	relay.mu.Lock()
	defer relay.mu.Unlock()
	require.NotNil(t, relay.booking)
	assert.Equal(t, "Asha", relay.booking.Name)
	assert.Equal(t, "a@b.com", relay.booking.Email)
	assert.Equal(t, "2024-01-06", relay.booking.Date)
	assert.Equal(t, []string{"AI Strategy", "Automation"}, relay.booking.Services)
	assert.Contains(t, out, relay.booking.BookingID)
}

func TestBook_DeliveryFailure(t *testing.T) {
	relay := &fakeRelay{codes: make(chan string, 1), failBooking: true}
	srv := httptest.NewServer(relay)
	defer srv.Close()

	pr, pw := io.Pipe()
	go func() {
		defer pw.Close()
		io.WriteString(pw, "a@b.com\n")
		code := <-relay.codes
		io.WriteString(pw, "Asha\nsecret1\n"+code+"\n")
		io.WriteString(pw, "\n\n5551234567\n\nIndia\n2024-01-06\n10:00\nAI Strategy\n")
		io.WriteString(pw, "n\n")
	}()

	out, err := execute(t, testConfig(srv.URL), pr, "book")

	assert.ErrorIs(t, err, workflow.ErrDeliveryFailed)
	assert.Contains(t, out, "Could not send your booking")
}
