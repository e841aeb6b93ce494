package availability

import (
	"time"

	"github.com/sajid-karim/tablebook/services/search-service/internal/model"
)

// BlackoutApplies reports whether a blackout rule closes its venue at the
// given date and minute. One-off rules match the exact date, recurring
// rules match the weekday. A rule with no time bounds closes the whole
// day; bounds, when present, are inclusive.
func BlackoutApplies(b model.BlackoutRule, date time.Time, minute int) bool {
	if b.Recurring {
		if b.Weekday != date.Weekday() {
			return false
		}
	} else {
		if b.Date == nil || !sameDate(*b.Date, date) {
			return false
		}
	}
	if b.StartMinute == nil || b.EndMinute == nil {
		return true
	}
	return minute >= *b.StartMinute && minute <= *b.EndMinute
}

// BlackedOutVenues collects the venue IDs closed at (date, minute).
func BlackedOutVenues(rules []model.BlackoutRule, date time.Time, minute int) map[string]struct{} {
	out := make(map[string]struct{})
	for _, b := range rules {
		if BlackoutApplies(b, date, minute) {
			out[b.VenueID] = struct{}{}
		}
	}
	return out
}

// ConflictSets splits blocking reservations into the tables they pin and,
// for reservations not yet assigned a table, the venues they hold. A
// table-less reservation holds the whole venue for that slot: the venue
// may still seat it at any of its tables.
func ConflictSets(reservations []model.Reservation) (tables, venues map[string]struct{}) {
	tables = make(map[string]struct{})
	venues = make(map[string]struct{})
	for _, res := range reservations {
		if !res.Status.Blocks() {
			continue
		}
		if res.TableID != nil && *res.TableID != "" {
			tables[*res.TableID] = struct{}{}
			continue
		}
		venues[res.VenueID] = struct{}{}
	}
	return tables, venues
}

// Exclude removes tables whose venue is blacked out or whose slot is held
// by an existing reservation. It only ever removes: the result is a subset
// of the input, and output order is not part of the contract.
func Exclude(tables []model.Table, blackedOut, heldTables, heldVenues map[string]struct{}) []model.Table {
	out := make([]model.Table, 0, len(tables))
	for _, t := range tables {
		if _, ok := blackedOut[t.VenueID]; ok {
			continue
		}
		if _, ok := heldVenues[t.VenueID]; ok {
			continue
		}
		if _, ok := heldTables[t.ID]; ok {
			continue
		}
		out = append(out, t)
	}
	return out
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
