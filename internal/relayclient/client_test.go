package relayclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diagnosis/consult-relay/internal/domain"
	"github.com/diagnosis/consult-relay/pkg/logger"
)

func TestSendVerification_Success(t *testing.T) {
	var got domain.VerificationReq
	var gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/send-verification", r.URL.Path)
		gotRequestID = r.Header.Get("X-Request-ID")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"success":true,"message":"Verification email sent successfully"}`))
	}))
	defer srv.Close()

	ctx := context.WithValue(context.Background(), logger.RequestIDKey, "req-1")
	err := New(srv.URL+"/", time.Second).SendVerification(ctx, "a@b.com", "123456")

	require.NoError(t, err)
	assert.Equal(t, "a@b.com", got.Email)
	assert.Equal(t, "123456", got.Code)
	assert.Equal(t, "req-1", gotRequestID)
}

func TestSendBooking_ReturnsID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/send-booking", r.URL.Path)
		w.Write([]byte(`{"success":true,"message":"Booking email sent successfully","bookingId":"X"}`))
	}))
	defer srv.Close()

	id, err := New(srv.URL, time.Second).SendBooking(context.Background(), &domain.BookingRequest{Name: "Asha", Email: "asha@example.com"})

	require.NoError(t, err)
	assert.Equal(t, "X", id)
}

func TestSendBooking_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"error":"Failed to send booking email","details":"Unauthorized"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).SendBooking(context.Background(), &domain.BookingRequest{Name: "Asha", Email: "asha@example.com"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "Failed to send booking email", apiErr.Message)
	assert.Equal(t, "Unauthorized", apiErr.Details)
}

func TestPost_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := New(srv.URL, time.Second).SendVerification(context.Background(), "a@b.com", "123456")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "bad gateway", apiErr.Message)
}

func TestPost_SuccessFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"nope"}`))
	}))
	defer srv.Close()

	err := New(srv.URL, time.Second).SendVerification(context.Background(), "a@b.com", "123456")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "nope", apiErr.Message)
}

func TestPost_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := New(url, time.Second).SendVerification(context.Background(), "a@b.com", "123456")
	assert.Error(t, err)
}
