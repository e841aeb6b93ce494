package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sajid-karim/tablebook/libs/domain"
	"github.com/sajid-karim/tablebook/services/reservation-service/internal/availcheck"
	"github.com/sajid-karim/tablebook/services/reservation-service/internal/model"
	"github.com/sajid-karim/tablebook/services/reservation-service/internal/outbox"
	"github.com/sajid-karim/tablebook/services/reservation-service/internal/storage"
)

type ReservationHandler struct {
	repo       *storage.ReservationRepository
	outboxRepo *outbox.Repository
	logger     *slog.Logger
	availcheck availcheck.Provider
}

func NewReservationHandler(repo *storage.ReservationRepository, outboxRepo *outbox.Repository, logger *slog.Logger, provider availcheck.Provider) *ReservationHandler {
	return &ReservationHandler{
		repo:       repo,
		outboxRepo: outboxRepo,
		logger:     logger,
		availcheck: provider,
	}
}

type createReservationRequest struct {
	VenueID    string `json:"venue_id"`
	TableID    string `json:"table_id"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	PartySize  int    `json:"party_size"`
	GuestName  string `json:"guest_name"`
	GuestPhone string `json:"guest_phone"`
	GuestEmail string `json:"guest_email"`
}

type createReservationResponse struct {
	ReservationID string `json:"reservation_id"`
	Status        string `json:"status"`
}

type cancelReservationRequest struct {
	VenueID       string `json:"venue_id"`
	ReservationID string `json:"reservation_id"`
	Reason        string `json:"reason"`
}

type cancelReservationResponse struct {
	ReservationID string `json:"reservation_id"`
	Status        string `json:"status"`
	CancelledAt   string `json:"cancelled_at"`
}

type reservationItem struct {
	ReservationID string `json:"reservation_id"`
	TableID       string `json:"table_id,omitempty"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	PartySize     int    `json:"party_size"`
	GuestName     string `json:"guest_name"`
	Status        string `json:"status"`
	CancelledAt   string `json:"cancelled_at,omitempty"`
	CreatedAt     string `json:"created_at"`
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.VenueID = strings.TrimSpace(req.VenueID)
	req.TableID = strings.TrimSpace(req.TableID)
	req.GuestName = strings.TrimSpace(req.GuestName)
	if req.VenueID == "" || req.GuestName == "" {
		http.Error(w, "venue_id and guest_name required", http.StatusBadRequest)
		return
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(req.Date))
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	clock, err := time.Parse("15:04", strings.TrimSpace(req.Time))
	if err != nil {
		http.Error(w, "invalid time", http.StatusBadRequest)
		return
	}
	minute := clock.Hour()*60 + clock.Minute()
	if req.PartySize < 1 {
		http.Error(w, "party_size must be at least 1", http.StatusBadRequest)
		return
	}

	res := &model.Reservation{
		VenueID:     req.VenueID,
		Date:        date,
		StartMinute: minute,
		PartySize:   req.PartySize,
		GuestName:   req.GuestName,
		GuestPhone:  strings.TrimSpace(req.GuestPhone),
		GuestEmail:  strings.TrimSpace(req.GuestEmail),
		Status:      domain.ReservationPending,
	}
	if req.TableID != "" {
		res.TableID = &req.TableID
	}

	ctx := r.Context()

	// Re-validate the slot against venue rules when the search client is
	// built in. A provider error fails the request; the check is never
	// silently skipped.
	if h.availcheck != nil {
		checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		ok, err := h.availcheck.SlotEligible(checkCtx, res.VenueID, res.Date, res.StartMinute, res.PartySize)
		cancel()
		if err != nil {
			h.logger.Error("slot eligibility check failed", "err", err)
			http.Error(w, "availability check unavailable", http.StatusServiceUnavailable)
			return
		}
		if !ok {
			http.Error(w, "venue does not accept this slot", http.StatusUnprocessableEntity)
			return
		}
	}

	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	id, err := h.repo.Create(ctx, tx, res)
	if err != nil {
		if storage.IsConflict(err) {
			http.Error(w, "slot already reserved", http.StatusConflict)
			return
		}
		h.logger.Error("reservation insert failed", "err", err)
		http.Error(w, "failed to create reservation", http.StatusInternalServerError)
		return
	}

	payload, err := json.Marshal(map[string]any{
		"reservation_id": id,
		"venue_id":       res.VenueID,
		"table_id":       req.TableID,
		"date":           res.Date.Format("2006-01-02"),
		"start_minute":   res.StartMinute,
		"party_size":     res.PartySize,
		"guest_name":     res.GuestName,
	})
	if err != nil {
		http.Error(w, "failed to build event payload", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "reservation",
		AggregateID:   id,
		EventType:     "reservation.created.v1",
		Payload:       payload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, createReservationResponse{
		ReservationID: id,
		Status:        string(domain.ReservationPending),
	})
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req cancelReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.VenueID = strings.TrimSpace(req.VenueID)
	req.ReservationID = strings.TrimSpace(req.ReservationID)
	req.Reason = strings.TrimSpace(req.Reason)
	if req.VenueID == "" || req.ReservationID == "" {
		http.Error(w, "venue_id and reservation_id required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	res, err := h.repo.GetForUpdate(ctx, tx, req.VenueID, req.ReservationID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "reservation not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load reservation", http.StatusInternalServerError)
		return
	}

	// Cancelling twice is a no-op, not an error.
	if res.Status == domain.ReservationCancelled && res.CancelledAt != nil {
		writeJSON(w, http.StatusOK, cancelReservationResponse{
			ReservationID: res.ID,
			Status:        string(domain.ReservationCancelled),
			CancelledAt:   res.CancelledAt.UTC().Format(time.RFC3339),
		})
		return
	}
	if res.Status != domain.ReservationPending && res.Status != domain.ReservationConfirmed {
		http.Error(w, "reservation cannot be cancelled", http.StatusConflict)
		return
	}

	cancelledAt, err := h.repo.Cancel(ctx, tx, req.VenueID, res.ID, req.Reason)
	if err != nil {
		http.Error(w, "failed to cancel reservation", http.StatusInternalServerError)
		return
	}

	payload, err := json.Marshal(map[string]any{
		"reservation_id": res.ID,
		"venue_id":       res.VenueID,
		"date":           res.Date.Format("2006-01-02"),
		"start_minute":   res.StartMinute,
		"cancelled_at":   cancelledAt.UTC().Format(time.RFC3339),
		"reason":         req.Reason,
	})
	if err != nil {
		http.Error(w, "failed to build event payload", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "reservation",
		AggregateID:   res.ID,
		EventType:     "reservation.cancelled.v1",
		Payload:       payload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, cancelReservationResponse{
		ReservationID: res.ID,
		Status:        string(domain.ReservationCancelled),
		CancelledAt:   cancelledAt.UTC().Format(time.RFC3339),
	})
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	venueID := strings.TrimSpace(r.URL.Query().Get("venue_id"))
	if venueID == "" {
		http.Error(w, "venue_id required", http.StatusBadRequest)
		return
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(r.URL.Query().Get("date")))
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	reservations, err := h.repo.ListByVenue(r.Context(), venueID, date, limit)
	if err != nil {
		http.Error(w, "failed to list reservations", http.StatusInternalServerError)
		return
	}

	items := make([]reservationItem, 0, len(reservations))
	for _, res := range reservations {
		item := reservationItem{
			ReservationID: res.ID,
			Date:          res.Date.Format("2006-01-02"),
			Time:          minuteToClock(res.StartMinute),
			PartySize:     res.PartySize,
			GuestName:     res.GuestName,
			Status:        string(res.Status),
			CreatedAt:     res.CreatedAt.UTC().Format(time.RFC3339),
		}
		if res.TableID != nil {
			item.TableID = *res.TableID
		}
		if res.CancelledAt != nil {
			item.CancelledAt = res.CancelledAt.UTC().Format(time.RFC3339)
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, items)
}

func minuteToClock(minute int) string {
	return pad(minute/60) + ":" + pad(minute%60)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
