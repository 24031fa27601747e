package events

import (
	"context"
	"courtbooking/internal/db"
	"courtbooking/internal/entities"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func sampleNotification() entities.Notification {
	loc := time.FixedZone("CST", 8*60*60)
	return entities.Notification{
		Kind: entities.NotificationBooked,
		Reservation: db.Reservation{
			Date:         time.Date(2024, 6, 12, 0, 0, 0, 0, loc),
			TimeSlot:     "18:00",
			Court:        2,
			CustomerName: "Carol",
			Phone:        db.DefaultContact,
			Email:        "carol@example.com",
		},
	}
}

func TestNotifyPublishesKeyedEnvelope(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisher(w)
	p.now = func() time.Time { return time.Date(2024, 6, 10, 2, 0, 0, 0, time.UTC) }

	require.NoError(t, p.Notify(context.Background(), sampleNotification()))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "2024-06-12_18:00_2", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "type", msg.Headers[0].Key)
	assert.Equal(t, "reservation.booked", string(msg.Headers[0].Value))

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, "reservation.booked", env.Type)
	assert.True(t, env.OccurredAt.Equal(p.now()))

	var payload ReservationPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "2024-06-12", payload.Date)
	assert.Equal(t, 2, payload.Court)
	assert.Equal(t, "Carol", payload.CustomerName)
	assert.Equal(t, "booked", payload.Status)
}

func TestNotifyWrapsWriterError(t *testing.T) {
	brokerDown := errors.New("broker down")
	p := newPublisher(&fakeWriter{err: brokerDown})

	err := p.Notify(context.Background(), sampleNotification())
	assert.ErrorIs(t, err, brokerDown)
	assert.Contains(t, err.Error(), "reservation.booked")
}

func TestClose(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, newPublisher(w).Close())
	assert.True(t, w.closed)
}
