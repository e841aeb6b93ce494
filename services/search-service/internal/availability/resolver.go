// Package availability computes the set of tables that are genuinely free
// for a requested (location, date, time, party size). It is a pure read
// pipeline: spatial lookup, weekly-rule matching, base table query, then
// conflict exclusion. It holds no mutable state, takes no locks, and never
// writes; the result is a snapshot, and slot exclusivity is enforced by
// the reservation write path at claim time.
package availability

import (
	"context"
	"time"

	"github.com/sajid-karim/tablebook/libs/domain"
	"github.com/sajid-karim/tablebook/services/search-service/internal/model"
)

// Store interfaces are deliberately narrow so tests can fake each stage
// independently. Every call takes the caller's context; all reads must
// honour its deadline.

type VenueFinder interface {
	// FindWithinRadius returns every venue whose stored point lies within
	// the geodesic radius of center. Order is unspecified.
	FindWithinRadius(ctx context.Context, center model.GeoPoint, radiusMeters float64) ([]model.Venue, error)
}

type RuleStore interface {
	// ListActiveRules returns the active time rules for the venues on the
	// given weekday.
	ListActiveRules(ctx context.Context, venueIDs []string, weekday time.Weekday) ([]model.TimeRule, error)
}

type BlackoutStore interface {
	// ListBlackouts returns the blackout rules that could affect the given
	// date for the venues: one-off rules on that date plus recurring rules
	// on its weekday.
	ListBlackouts(ctx context.Context, venueIDs []string, date time.Time) ([]model.BlackoutRule, error)
}

type TableStore interface {
	// ListOpenTables returns active, available tables at the venues with at
	// least minCapacity seats, filtered by seating when it names a concrete
	// category.
	ListOpenTables(ctx context.Context, venueIDs []string, minCapacity int, seating domain.SeatingCategory) ([]model.Table, error)
}

type ReservationStore interface {
	// ListBlockingReservations returns reservations at exactly
	// (date, minute) for the venues whose status holds the slot.
	ListBlockingReservations(ctx context.Context, venueIDs []string, date time.Time, minute int) ([]model.Reservation, error)
}

// PartySizeLimits is the platform-wide accepted range; requests outside it
// are rejected, never clamped.
type PartySizeLimits struct {
	Min int
	Max int
}

type Config struct {
	PartySize PartySizeLimits
	// AllowPastDates permits back-office searches on past dates. Customer
	// traffic leaves it false.
	AllowPastDates bool
	// Now is overridable in tests; defaults to time.Now.
	Now func() time.Time
}

type Resolver struct {
	venues       VenueFinder
	rules        RuleStore
	blackouts    BlackoutStore
	tables       TableStore
	reservations ReservationStore
	cfg          Config
}

func NewResolver(venues VenueFinder, rules RuleStore, blackouts BlackoutStore, tables TableStore, reservations ReservationStore, cfg Config) *Resolver {
	if cfg.PartySize.Min <= 0 {
		cfg.PartySize.Min = 1
	}
	if cfg.PartySize.Max <= 0 {
		cfg.PartySize.Max = 20
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Resolver{
		venues:       venues,
		rules:        rules,
		blackouts:    blackouts,
		tables:       tables,
		reservations: reservations,
		cfg:          cfg,
	}
}

// Query is a search request. The resolver re-validates every field even
// when the transport layer has already parsed it.
type Query struct {
	Center       model.GeoPoint
	RadiusMeters float64
	Date         time.Time // civil date, venue-local
	Minute       int       // minutes since midnight, venue-local
	PartySize    int
	Seating      domain.SeatingCategory // empty or no_preference: no filter
}

// SearchAvailable runs the full pipeline and returns the free tables.
// An empty result is a successful outcome, not an error. Any stage
// failure aborts the whole call; partial results are never returned.
func (r *Resolver) SearchAvailable(ctx context.Context, q Query) ([]model.Table, error) {
	if err := r.validate(q); err != nil {
		return nil, err
	}

	venues, err := r.venues.FindWithinRadius(ctx, q.Center, q.RadiusMeters)
	if err != nil {
		return nil, storeErr("spatial lookup", err)
	}
	if len(venues) == 0 {
		return []model.Table{}, nil
	}
	venueIDs := make([]string, 0, len(venues))
	for _, v := range venues {
		venueIDs = append(venueIDs, v.ID)
	}

	eligible, err := r.MatchEligibleVenues(ctx, venueIDs, q.Date, q.Minute, q.PartySize)
	if err != nil {
		return nil, err
	}
	if len(eligible) == 0 {
		return []model.Table{}, nil
	}

	seating := q.Seating
	if seating == domain.SeatingNoPreference {
		seating = ""
	}
	tables, err := r.tables.ListOpenTables(ctx, eligible, q.PartySize, seating)
	if err != nil {
		return nil, storeErr("table lookup", err)
	}
	if len(tables) == 0 {
		return []model.Table{}, nil
	}

	return r.ExcludeConflicts(ctx, tables, eligible, q.Date, q.Minute)
}

// MatchEligibleVenues returns the subset of venueIDs with an active time
// rule covering (date's weekday, minute, partySize). Exposed separately
// because back-office flows check eligibility without a spatial search.
func (r *Resolver) MatchEligibleVenues(ctx context.Context, venueIDs []string, date time.Time, minute, partySize int) ([]string, error) {
	if partySize < 1 {
		return nil, invalidf("party_size", "must be at least 1")
	}
	weekday := date.Weekday()
	rules, err := r.rules.ListActiveRules(ctx, venueIDs, weekday)
	if err != nil {
		return nil, storeErr("time rule lookup", err)
	}
	return EligibleVenues(venueIDs, rules, weekday, minute, partySize), nil
}

// ExcludeConflicts drops tables at blacked-out venues and tables whose
// exact slot is held by a blocking reservation. Both lookups must succeed:
// a failed exclusion read fails the whole call rather than risking a
// false "free" answer.
func (r *Resolver) ExcludeConflicts(ctx context.Context, tables []model.Table, venueIDs []string, date time.Time, minute int) ([]model.Table, error) {
	blackouts, err := r.blackouts.ListBlackouts(ctx, venueIDs, date)
	if err != nil {
		return nil, storeErr("blackout lookup", err)
	}
	reservations, err := r.reservations.ListBlockingReservations(ctx, venueIDs, date, minute)
	if err != nil {
		return nil, storeErr("reservation lookup", err)
	}

	blackedOut := BlackedOutVenues(blackouts, date, minute)
	heldTables, heldVenues := ConflictSets(reservations)
	return Exclude(tables, blackedOut, heldTables, heldVenues), nil
}

// CheckSlot re-validates a single venue's slot at write time: the venue
// must have a covering time rule and no blackout at (date, minute). Table
// exclusivity is not checked here; the reservation insert's unique
// constraint owns that.
func (r *Resolver) CheckSlot(ctx context.Context, venueID string, date time.Time, minute, partySize int) (bool, error) {
	eligible, err := r.MatchEligibleVenues(ctx, []string{venueID}, date, minute, partySize)
	if err != nil {
		return false, err
	}
	if len(eligible) == 0 {
		return false, nil
	}
	blackouts, err := r.blackouts.ListBlackouts(ctx, []string{venueID}, date)
	if err != nil {
		return false, storeErr("blackout lookup", err)
	}
	if _, closed := BlackedOutVenues(blackouts, date, minute)[venueID]; closed {
		return false, nil
	}
	return true, nil
}

func (r *Resolver) validate(q Query) error {
	if q.Center.Lat < -90 || q.Center.Lat > 90 {
		return invalidf("lat", "must be within [-90, 90], got %v", q.Center.Lat)
	}
	if q.Center.Lng < -180 || q.Center.Lng > 180 {
		return invalidf("lng", "must be within [-180, 180], got %v", q.Center.Lng)
	}
	if q.RadiusMeters <= 0 {
		return invalidf("radius_m", "must be positive, got %v", q.RadiusMeters)
	}
	if q.Date.IsZero() {
		return invalidf("date", "is required")
	}
	if !r.cfg.AllowPastDates {
		now := r.cfg.Now().UTC()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		d := q.Date
		reqDay := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		if reqDay.Before(today) {
			return invalidf("date", "must not be in the past")
		}
	}
	if q.Minute < 0 || q.Minute > 23*60+59 {
		return invalidf("time", "must be within the day, got minute %d", q.Minute)
	}
	if q.PartySize < r.cfg.PartySize.Min || q.PartySize > r.cfg.PartySize.Max {
		return invalidf("party_size", "must be within [%d, %d], got %d", r.cfg.PartySize.Min, r.cfg.PartySize.Max, q.PartySize)
	}
	if q.Seating != "" && q.Seating != domain.SeatingNoPreference && !q.Seating.Valid() {
		return invalidf("seating", "unknown category %q", string(q.Seating))
	}
	return nil
}
