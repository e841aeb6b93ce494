package model

import (
	"time"

	"github.com/sajid-karim/tablebook/libs/domain"
)

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Lat float64
	Lng float64
}

// Venue is the physical site that owns tables, time rules and blackouts.
// Read-only for the search service.
type Venue struct {
	ID      string
	Name    string
	Address string
	Point   GeoPoint
}

// Table is a bookable unit. VenueName/VenueAddress are denormalized by the
// table query so search results render without a second round-trip.
type Table struct {
	ID           string
	VenueID      string
	VenueName    string
	VenueAddress string
	Capacity     int
	Seating      domain.SeatingCategory
	Status       domain.TableStatus
	Active       bool
}

// TimeRule is a recurring weekly booking window for a venue. Times are
// minutes since midnight in the venue's local day.
type TimeRule struct {
	ID           string
	VenueID      string
	Weekday      time.Weekday
	StartMinute  int
	EndMinute    int
	MinPartySize int
	MaxPartySize int
	Active       bool
}

// BlackoutRule closes a venue for a date (one-off) or a weekday
// (recurring). Nil StartMinute/EndMinute means all day.
type BlackoutRule struct {
	ID          string
	VenueID     string
	Recurring   bool
	Date        *time.Time // set when not recurring; civil date at midnight
	Weekday     time.Weekday
	StartMinute *int
	EndMinute   *int
}

// Reservation is an existing booking read for conflict exclusion.
// TableID is nil until the venue assigns a concrete table.
type Reservation struct {
	ID          string
	VenueID     string
	TableID     *string
	Date        time.Time // civil date at midnight
	StartMinute int
	PartySize   int
	Status      domain.ReservationStatus
}
