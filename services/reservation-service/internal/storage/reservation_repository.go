package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sajid-karim/tablebook/libs/db"
	"github.com/sajid-karim/tablebook/libs/domain"
	"github.com/sajid-karim/tablebook/services/reservation-service/internal/model"
)

type ReservationRepository struct {
	pool *db.Pool
}

func NewReservationRepository(pool *db.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

func (r *ReservationRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// Create inserts a new reservation. Slot exclusivity is enforced by a
// partial unique index on (table_id, reservation_date, start_minute) over
// blocking statuses; a violation surfaces through IsConflict. A stale
// availability snapshot on the read side therefore can never double-book,
// only produce an insert that fails here.
func (r *ReservationRepository) Create(ctx context.Context, tx pgx.Tx, res *model.Reservation) (string, error) {
	id := uuid.NewString()
	_, err := tx.Exec(ctx, `
		INSERT INTO reservations
			(id, venue_id, table_id, reservation_date, start_minute, party_size,
			 guest_name, guest_phone, guest_email, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, id, res.VenueID, res.TableID, res.Date, res.StartMinute, res.PartySize,
		res.GuestName, res.GuestPhone, res.GuestEmail, string(res.Status))
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *ReservationRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, venueID, reservationID string) (model.Reservation, error) {
	var res model.Reservation
	var status string
	err := tx.QueryRow(ctx, `
		SELECT id::text, venue_id::text, table_id::text, reservation_date,
			start_minute, party_size, guest_name, guest_phone, guest_email,
			status, cancelled_at, COALESCE(cancel_reason, ''), created_at
		FROM reservations
		WHERE id = $1 AND venue_id = $2
		FOR UPDATE
	`, reservationID, venueID).Scan(
		&res.ID,
		&res.VenueID,
		&res.TableID,
		&res.Date,
		&res.StartMinute,
		&res.PartySize,
		&res.GuestName,
		&res.GuestPhone,
		&res.GuestEmail,
		&status,
		&res.CancelledAt,
		&res.CancelReason,
		&res.CreatedAt,
	)
	if err != nil {
		return model.Reservation{}, err
	}
	res.Status = domain.ReservationStatus(status)
	return res, nil
}

func (r *ReservationRepository) Cancel(ctx context.Context, tx pgx.Tx, venueID, reservationID, reason string) (time.Time, error) {
	var cancelledAt time.Time
	err := tx.QueryRow(ctx, `
		UPDATE reservations
		SET status = $3,
			cancelled_at = now(),
			cancel_reason = $4
		WHERE id = $1 AND venue_id = $2
		RETURNING cancelled_at
	`, reservationID, venueID, string(domain.ReservationCancelled), reason).Scan(&cancelledAt)
	return cancelledAt, err
}

func (r *ReservationRepository) ListByVenue(ctx context.Context, venueID string, date time.Time, limit int) ([]model.Reservation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, venue_id::text, table_id::text, reservation_date,
			start_minute, party_size, guest_name, guest_phone, guest_email,
			status, cancelled_at, COALESCE(cancel_reason, ''), created_at
		FROM reservations
		WHERE venue_id = $1 AND reservation_date = $2
		ORDER BY start_minute ASC, created_at ASC
		LIMIT $3
	`, venueID, date, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Reservation
	for rows.Next() {
		var res model.Reservation
		var status string
		if err := rows.Scan(
			&res.ID,
			&res.VenueID,
			&res.TableID,
			&res.Date,
			&res.StartMinute,
			&res.PartySize,
			&res.GuestName,
			&res.GuestPhone,
			&res.GuestEmail,
			&status,
			&res.CancelledAt,
			&res.CancelReason,
			&res.CreatedAt,
		); err != nil {
			return nil, err
		}
		res.Status = domain.ReservationStatus(status)
		out = append(out, res)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// IsConflict matches both a unique-index violation (23505) and an
// exclusion-constraint violation (23P01) so the schema can move from one
// mechanism to the other without touching handlers.
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" || pgErr.Code == "23P01"
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
