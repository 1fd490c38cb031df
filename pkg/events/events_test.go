package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageDecode(t *testing.T) {
	msg := &Message{
		Subject: MailBookingSent,
		Data:    []byte(`{"type":"booking","recipient":"admin@example.com","booking_id":"X"}`),
	}

	ev, err := msg.Decode()
	require.NoError(t, err)
	assert.Equal(t, "booking", ev.Type)
	assert.Equal(t, "admin@example.com", ev.Recipient)
	assert.Equal(t, "X", ev.BookingID)

	_, err = (&Message{Subject: MailBookingSent, Data: []byte("{")}).Decode()
	assert.Error(t, err)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), MailVerificationSent, MailEvent{Type: "verification"}))
	assert.NoError(t, p.Close())
}
