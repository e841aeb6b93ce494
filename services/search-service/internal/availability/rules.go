package availability

import (
	"time"

	"github.com/sajid-karim/tablebook/services/search-service/internal/model"
)

// RuleCovers reports whether a time rule admits a party of the given size
// at the given weekday and minute-of-day. Bounds are inclusive on both
// ends: a request at exactly the rule's start or end minute is covered,
// and a party exactly at min or max size fits.
func RuleCovers(r model.TimeRule, weekday time.Weekday, minute, partySize int) bool {
	if !r.Active || r.Weekday != weekday {
		return false
	}
	if minute < r.StartMinute || minute > r.EndMinute {
		return false
	}
	return partySize >= r.MinPartySize && partySize <= r.MaxPartySize
}

// EligibleVenues returns the venues from venueIDs with at least one rule
// covering the slot. One match suffices; rules are never merged or ranked.
// The result is a de-duplicated subset of venueIDs in input order.
func EligibleVenues(venueIDs []string, rules []model.TimeRule, weekday time.Weekday, minute, partySize int) []string {
	matched := make(map[string]struct{}, len(venueIDs))
	for _, r := range rules {
		if RuleCovers(r, weekday, minute, partySize) {
			matched[r.VenueID] = struct{}{}
		}
	}

	out := make([]string, 0, len(matched))
	seen := make(map[string]struct{}, len(matched))
	for _, id := range venueIDs {
		if _, ok := matched[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
