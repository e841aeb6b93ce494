package model

import (
	"time"

	"github.com/sajid-karim/tablebook/libs/domain"
)

type Reservation struct {
	ID           string
	VenueID      string
	TableID      *string // nil until the venue assigns a table
	Date         time.Time
	StartMinute  int
	PartySize    int
	GuestName    string
	GuestPhone   string
	GuestEmail   string
	Status       domain.ReservationStatus
	CancelledAt  *time.Time
	CancelReason string
	CreatedAt    time.Time
}
