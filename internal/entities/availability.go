package entities

import (
	"time"
)

const (
	AvailableMarker = "✅ Available"
	OccupiedPrefix  = "🔴 "
)

// GridCell is one (court, slot, date) cell of the availability grid.
type GridCell struct {
	Date     time.Time `json:"date"`
	Occupant string    `json:"occupant,omitempty"`
}

func (c GridCell) Available() bool {
	return c.Occupant == ""
}

func (c GridCell) Label() string {
	if c.Available() {
		return AvailableMarker
	}
	return OccupiedPrefix + c.Occupant
}

type GridRow struct {
	Court    int        `json:"court"`
	TimeSlot string     `json:"time_slot"`
	Cells    []GridCell `json:"cells"`
}

// AvailabilityGrid is the time-slot x date projection of the ledger.
type AvailabilityGrid struct {
	GeneratedAt time.Time   `json:"generated_at"`
	Dates       []time.Time `json:"dates"`
	Rows        []GridRow   `json:"rows"`
}

type AvailableSlot struct {
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot"`
	Court    int    `json:"court"`
}
