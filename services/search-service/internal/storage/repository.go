package storage

import (
	"context"
	"time"

	"github.com/sajid-karim/tablebook/libs/db"
	"github.com/sajid-karim/tablebook/libs/domain"
	"github.com/sajid-karim/tablebook/services/search-service/internal/model"
)

// Repository implements the resolver's store interfaces over Postgres.
// Every query filters soft-deleted rows explicitly (deleted_at IS NULL)
// instead of relying on a default query scope, so the resolver's
// invariants stay auditable from the SQL alone.
type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindWithinRadius computes geodesic distance with the Haversine formula
// in SQL. Venue counts are small enough (thousands) that an index-assisted
// bounding box is not worth the complexity yet.
func (r *Repository) FindWithinRadius(ctx context.Context, center model.GeoPoint, radiusMeters float64) ([]model.Venue, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, name, address, lat, lng
		FROM venues
		WHERE deleted_at IS NULL
			AND 2 * 6371000 * asin(sqrt(
				pow(sin(radians(lat - $1) / 2), 2) +
				cos(radians($1)) * cos(radians(lat)) * pow(sin(radians(lng - $2) / 2), 2)
			)) <= $3
	`, center.Lat, center.Lng, radiusMeters)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Venue
	for rows.Next() {
		var v model.Venue
		if err := rows.Scan(&v.ID, &v.Name, &v.Address, &v.Point.Lat, &v.Point.Lng); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Repository) ListActiveRules(ctx context.Context, venueIDs []string, weekday time.Weekday) ([]model.TimeRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, venue_id::text, weekday, start_minute, end_minute,
			min_party_size, max_party_size, is_active
		FROM time_rules
		WHERE venue_id = ANY($1)
			AND weekday = $2
			AND is_active
			AND deleted_at IS NULL
	`, venueIDs, int(weekday))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TimeRule
	for rows.Next() {
		var tr model.TimeRule
		var wd int
		if err := rows.Scan(&tr.ID, &tr.VenueID, &wd, &tr.StartMinute, &tr.EndMinute,
			&tr.MinPartySize, &tr.MaxPartySize, &tr.Active); err != nil {
			return nil, err
		}
		tr.Weekday = time.Weekday(wd)
		out = append(out, tr)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Repository) ListBlackouts(ctx context.Context, venueIDs []string, date time.Time) ([]model.BlackoutRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, venue_id::text, is_recurring, blackout_date, weekday,
			start_minute, end_minute
		FROM blackout_rules
		WHERE venue_id = ANY($1)
			AND deleted_at IS NULL
			AND (
				(NOT is_recurring AND blackout_date = $2)
				OR (is_recurring AND weekday = $3)
			)
	`, venueIDs, date, int(date.Weekday()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BlackoutRule
	for rows.Next() {
		var b model.BlackoutRule
		var wd *int
		if err := rows.Scan(&b.ID, &b.VenueID, &b.Recurring, &b.Date, &wd,
			&b.StartMinute, &b.EndMinute); err != nil {
			return nil, err
		}
		if wd != nil {
			b.Weekday = time.Weekday(*wd)
		}
		out = append(out, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Repository) ListOpenTables(ctx context.Context, venueIDs []string, minCapacity int, seating domain.SeatingCategory) ([]model.Table, error) {
	// seating = '' disables the category filter.
	rows, err := r.pool.Query(ctx, `
		SELECT t.id::text, t.venue_id::text, v.name, v.address,
			t.capacity, t.seating, t.status, t.is_active
		FROM tables t
		JOIN venues v ON v.id = t.venue_id
		WHERE t.venue_id = ANY($1)
			AND t.status = $2
			AND t.is_active
			AND t.deleted_at IS NULL
			AND v.deleted_at IS NULL
			AND t.capacity >= $3
			AND ($4 = '' OR t.seating = $4)
	`, venueIDs, string(domain.TableAvailable), minCapacity, string(seating))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Table
	for rows.Next() {
		var t model.Table
		if err := rows.Scan(&t.ID, &t.VenueID, &t.VenueName, &t.VenueAddress,
			&t.Capacity, &t.Seating, &t.Status, &t.Active); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Repository) ListBlockingReservations(ctx context.Context, venueIDs []string, date time.Time, minute int) ([]model.Reservation, error) {
	statuses := make([]string, 0, len(domain.BlockingReservationStatuses))
	for _, s := range domain.BlockingReservationStatuses {
		statuses = append(statuses, string(s))
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id::text, venue_id::text, table_id::text, reservation_date,
			start_minute, party_size, status
		FROM reservations
		WHERE venue_id = ANY($1)
			AND reservation_date = $2
			AND start_minute = $3
			AND status = ANY($4)
	`, venueIDs, date, minute, statuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Reservation
	for rows.Next() {
		var res model.Reservation
		if err := rows.Scan(&res.ID, &res.VenueID, &res.TableID, &res.Date,
			&res.StartMinute, &res.PartySize, &res.Status); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
