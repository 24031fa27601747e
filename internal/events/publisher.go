package events

import (
	"context"
	"courtbooking/internal/db"
	"courtbooking/internal/entities"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Envelope is the JSON body of every reservation event.
type Envelope struct {
	EventID    string          `json:"event_id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// ReservationPayload is the reservation as other services see it.
type ReservationPayload struct {
	SlotKey      string `json:"slot_key"`
	Date         string `json:"date"`
	TimeSlot     string `json:"time_slot"`
	Court        int    `json:"court"`
	CustomerName string `json:"customer_name"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	Status       string `json:"status"`
	Notes        string `json:"notes,omitempty"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher emits reservation changes to a Kafka topic, keyed by slot key so all
// events of one slot land on one partition.
type Publisher struct {
	w   messageWriter
	now func() time.Time
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return newPublisher(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	})
}

func newPublisher(w messageWriter) *Publisher {
	return &Publisher{w: w, now: time.Now}
}

// Notify publishes one event and waits for the broker acknowledgement.
func (p *Publisher) Notify(ctx context.Context, n entities.Notification) error {
	msg, err := p.message(n)
	if err != nil {
		return err
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", n.Kind, err)
	}
	return nil
}

func (p *Publisher) message(n entities.Notification) (kafka.Message, error) {
	r := n.Reservation
	payload, err := json.Marshal(ReservationPayload{
		SlotKey:      r.Key().String(),
		Date:         r.Date.Format(db.DateLayout),
		TimeSlot:     r.TimeSlot,
		Court:        r.Court,
		CustomerName: r.CustomerName,
		Phone:        r.Phone,
		Email:        r.Email,
		Status:       r.Status.String(),
		Notes:        r.Notes,
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode payload: %w", err)
	}
	now := p.now()
	body, err := json.Marshal(Envelope{
		EventID:    uuid.NewString(),
		Type:       string(n.Kind),
		OccurredAt: now.UTC(),
		Payload:    payload,
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode envelope: %w", err)
	}
	return kafka.Message{
		Key:     []byte(r.Key().String()),
		Value:   body,
		Time:    now,
		Headers: []kafka.Header{{Key: "type", Value: []byte(n.Kind)}},
	}, nil
}

func (p *Publisher) Close() error {
	return p.w.Close()
}
