// Package domain holds the enumerations shared by the search and
// reservation services. Every status/category comparison in the codebase
// goes through these types instead of ad hoc string literals.
package domain

// TableStatus is the operational state of a bookable table.
type TableStatus string

const (
	TableAvailable   TableStatus = "available"
	TableReserved    TableStatus = "reserved"
	TableMaintenance TableStatus = "maintenance"
	TableInactive    TableStatus = "inactive"
)

func (s TableStatus) Valid() bool {
	switch s {
	case TableAvailable, TableReserved, TableMaintenance, TableInactive:
		return true
	}
	return false
}

// SeatingCategory describes where a table is placed inside a venue.
type SeatingCategory string

const (
	SeatingIndoor  SeatingCategory = "indoor"
	SeatingOutdoor SeatingCategory = "outdoor"
	SeatingBar     SeatingCategory = "bar"
	SeatingPrivate SeatingCategory = "private"

	// SeatingNoPreference is accepted on search requests and means
	// "do not filter by seating".
	SeatingNoPreference SeatingCategory = "no_preference"
)

func (c SeatingCategory) Valid() bool {
	switch c {
	case SeatingIndoor, SeatingOutdoor, SeatingBar, SeatingPrivate:
		return true
	}
	return false
}

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationSeated    ReservationStatus = "seated"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationNoShow    ReservationStatus = "no_show"
)

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationSeated,
		ReservationCompleted, ReservationCancelled, ReservationNoShow:
		return true
	}
	return false
}

// Blocks reports whether a reservation in this status holds its slot.
// Completed reservations do not block: a completed reservation at a future
// slot cannot occur in correct data, and treating it as blocking would hide
// the upstream integrity bug instead of surfacing it.
func (s ReservationStatus) Blocks() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationSeated:
		return true
	}
	return false
}

// BlockingReservationStatuses is the set used in SQL IN-lists and the
// partial unique index that enforces slot exclusivity at write time.
var BlockingReservationStatuses = []ReservationStatus{
	ReservationPending,
	ReservationConfirmed,
	ReservationSeated,
}
