package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sajid-karim/tablebook/libs/domain"
	"github.com/sajid-karim/tablebook/services/search-service/internal/availability"
	"github.com/sajid-karim/tablebook/services/search-service/internal/model"
)

type SearchHandler struct {
	resolver *availability.Resolver
	logger   *slog.Logger
}

func NewSearchHandler(resolver *availability.Resolver, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{resolver: resolver, logger: logger}
}

type tableItem struct {
	TableID      string `json:"table_id"`
	VenueID      string `json:"venue_id"`
	VenueName    string `json:"venue_name"`
	VenueAddress string `json:"venue_address"`
	Capacity     int    `json:"capacity"`
	Seating      string `json:"seating"`
}

type searchResponse struct {
	Tables []tableItem `json:"tables"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// Search handles GET /api/v1/public/search. The handler parses and the
// resolver re-validates; a malformed request never reaches the store.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q, err := parseQuery(r)
	if err != nil {
		writeResolverError(w, err)
		return
	}

	tables, err := h.resolver.SearchAvailable(r.Context(), q)
	if err != nil {
		if errors.Is(err, availability.ErrInvalidInput) {
			writeResolverError(w, err)
			return
		}
		h.logger.Error("search failed", "err", err)
		writeResolverError(w, err)
		return
	}

	items := make([]tableItem, 0, len(tables))
	for _, t := range tables {
		items = append(items, tableItem{
			TableID:      t.ID,
			VenueID:      t.VenueID,
			VenueName:    t.VenueName,
			VenueAddress: t.VenueAddress,
			Capacity:     t.Capacity,
			Seating:      string(t.Seating),
		})
	}

	writeJSON(w, http.StatusOK, searchResponse{Tables: items})
}

func parseQuery(r *http.Request) (availability.Query, error) {
	var q availability.Query

	lat, err := parseFloat(r, "lat")
	if err != nil {
		return q, err
	}
	lng, err := parseFloat(r, "lng")
	if err != nil {
		return q, err
	}
	radius, err := parseFloat(r, "radius_m")
	if err != nil {
		return q, err
	}

	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return q, &availability.FieldError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}

	timeStr := strings.TrimSpace(r.URL.Query().Get("time"))
	clock, err := time.Parse("15:04", timeStr)
	if err != nil {
		return q, &availability.FieldError{Field: "time", Reason: "must be HH:MM (24h)"}
	}

	partySize, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("party_size")))
	if err != nil {
		return q, &availability.FieldError{Field: "party_size", Reason: "must be an integer"}
	}

	q = availability.Query{
		Center:       model.GeoPoint{Lat: lat, Lng: lng},
		RadiusMeters: radius,
		Date:         date,
		Minute:       clock.Hour()*60 + clock.Minute(),
		PartySize:    partySize,
		Seating:      domain.SeatingCategory(strings.TrimSpace(r.URL.Query().Get("seating"))),
	}
	return q, nil
}

func parseFloat(r *http.Request, name string) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &availability.FieldError{Field: name, Reason: "must be a number"}
	}
	return v, nil
}

func writeResolverError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}
	var fieldErr *availability.FieldError
	if errors.As(err, &fieldErr) {
		resp.Field = fieldErr.Field
		resp.Error = fieldErr.Reason
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, availability.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, availability.ErrTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, availability.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
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
