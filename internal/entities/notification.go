package entities

import (
	"courtbooking/internal/db"
)

type NotificationKind string

const (
	NotificationBooked    NotificationKind = "reservation.booked"
	NotificationCancelled NotificationKind = "reservation.cancelled"
)

type Notification struct {
	Kind        NotificationKind
	Reservation db.Reservation
}
