package db

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"

	// StatusColumn is the 1-based ledger column holding the status text.
	StatusColumn = 7
	// LedgerColumns is the width of a serialized reservation row.
	LedgerColumns = 9

	DefaultContact = "N/A"
)

// Status is the lifecycle state of a reservation. Presentation labels only exist
// at the serialization boundary, see Text and ParseStatus.
type Status int

const (
	StatusBooked Status = iota
	StatusCancelled
	// StatusOther is status text naming neither state. It never holds a slot.
	StatusOther
)

const (
	bookedText    = "🔴 Booked"
	cancelledText = "⚪ Cancelled"
	otherText     = "❔ Unknown"
)

func (s Status) Text() string {
	switch s {
	case StatusCancelled:
		return cancelledText
	case StatusOther:
		return otherText
	}
	return bookedText
}

func (s Status) String() string {
	switch s {
	case StatusCancelled:
		return "cancelled"
	case StatusOther:
		return "other"
	}
	return "booked"
}

// ParseStatus maps persisted text onto a Status by the word it contains. An empty
// cell is Booked; text naming neither word is StatusOther.
func ParseStatus(text string) Status {
	t := strings.ToLower(strings.TrimSpace(text))
	switch {
	case t == "":
		return StatusBooked
	case strings.Contains(t, "cancel"):
		return StatusCancelled
	case strings.Contains(t, "booked"):
		return StatusBooked
	}
	return StatusOther
}

// SlotKey identifies one bookable unit: a court at an hourly slot on a day.
type SlotKey struct {
	Date     string
	TimeSlot string
	Court    int
}

func NewSlotKey(date time.Time, timeSlot string, court int) SlotKey {
	return SlotKey{Date: date.Format(DateLayout), TimeSlot: timeSlot, Court: court}
}

func (k SlotKey) String() string {
	return fmt.Sprintf("%s_%s_%d", k.Date, k.TimeSlot, k.Court)
}

type Reservation struct {
	Date         time.Time
	TimeSlot     string
	Court        int
	CustomerName string
	Phone        string
	Email        string
	Status       Status
	CreatedAt    time.Time
	Notes        string

	// Row is the 1-based ledger position the reservation was read from or
	// appended to. Zero when unknown.
	Row int
}

func (r Reservation) Key() SlotKey {
	return NewSlotKey(r.Date, r.TimeSlot, r.Court)
}

func (r Reservation) IsBooked() bool {
	return r.Status == StatusBooked
}

// ToRow serializes the reservation in ledger column order.
func (r Reservation) ToRow() []string {
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return []string{
		r.Date.Format(DateLayout),
		r.TimeSlot,
		fmt.Sprintf("%d", r.Court),
		r.CustomerName,
		r.Phone,
		r.Email,
		r.Status.Text(),
		createdAt.Format(TimestampLayout),
		r.Notes,
	}
}

// FromRow decodes a ledger row. Missing trailing cells take their defaults; a bad
// date or court yields ErrMalformedRecord.
func FromRow(cells []string) (Reservation, error) {
	if len(cells) < 4 {
		return Reservation{}, fmt.Errorf("%w: %d cells", ErrMalformedRecord, len(cells))
	}
	cell := func(i int) (string, bool) {
		if i >= len(cells) {
			return "", false
		}
		return strings.TrimSpace(cells[i]), true
	}

	dateText, _ := cell(0)
	date, err := time.Parse(DateLayout, dateText)
	if err != nil {
		return Reservation{}, fmt.Errorf("%w: date %q", ErrMalformedRecord, dateText)
	}
	courtText, _ := cell(2)
	court, err := ParseInt(courtText)
	if err != nil {
		return Reservation{}, fmt.Errorf("%w: court %q", ErrMalformedRecord, courtText)
	}
	timeSlot, _ := cell(1)
	name, _ := cell(3)

	r := Reservation{
		Date:         date,
		TimeSlot:     timeSlot,
		Court:        court,
		CustomerName: name,
		Phone:        DefaultContact,
		Email:        DefaultContact,
		Status:       StatusBooked,
	}
	if v, ok := cell(4); ok {
		r.Phone = v
	}
	if v, ok := cell(5); ok {
		r.Email = v
	}
	if v, ok := cell(6); ok {
		r.Status = ParseStatus(v)
	}
	if v, ok := cell(7); ok && v != "" {
		if ts, err := time.ParseInLocation(TimestampLayout, v, time.Local); err == nil {
			r.CreatedAt = ts
		}
	}
	if v, ok := cell(8); ok {
		r.Notes = v
	}
	return r, nil
}
