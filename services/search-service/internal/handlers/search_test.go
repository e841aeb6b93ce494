package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/sajid-karim/tablebook/libs/domain"
	"github.com/sajid-karim/tablebook/services/search-service/internal/availability"
	"github.com/sajid-karim/tablebook/services/search-service/internal/model"
)

type stubStore struct {
	venues       []model.Venue
	rules        []model.TimeRule
	tables       []model.Table
	venuesErr    error
	blackoutsErr error
}

func (s *stubStore) FindWithinRadius(context.Context, model.GeoPoint, float64) ([]model.Venue, error) {
	return s.venues, s.venuesErr
}

func (s *stubStore) ListActiveRules(context.Context, []string, time.Weekday) ([]model.TimeRule, error) {
	return s.rules, nil
}

func (s *stubStore) ListBlackouts(context.Context, []string, time.Time) ([]model.BlackoutRule, error) {
	return nil, s.blackoutsErr
}

func (s *stubStore) ListOpenTables(context.Context, []string, int, domain.SeatingCategory) ([]model.Table, error) {
	return s.tables, nil
}

func (s *stubStore) ListBlockingReservations(context.Context, []string, time.Time, int) ([]model.Reservation, error) {
	return nil, nil
}

func newTestHandler(s *stubStore) *SearchHandler {
	resolver := availability.NewResolver(s, s, s, s, s, availability.Config{
		Now: func() time.Time { return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC) },
	})
	return NewSearchHandler(resolver, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func searchRequest(params map[string]string) *http.Request {
	q := url.Values{}
	for k, v := range map[string]string{
		"lat": "40.71", "lng": "-74.0", "radius_m": "2000",
		"date": "2026-09-04", "time": "19:00", "party_size": "2",
	} {
		q.Set(k, v)
	}
	for k, v := range params {
		if v == "" {
			q.Del(k)
			continue
		}
		q.Set(k, v)
	}
	return httptest.NewRequest(http.MethodGet, "/api/v1/public/search?"+q.Encode(), nil)
}

func TestSearchHandlerOK(t *testing.T) {
	store := &stubStore{
		venues: []model.Venue{{ID: "v1", Name: "North"}},
		rules: []model.TimeRule{{
			VenueID: "v1", Weekday: time.Friday,
			StartMinute: 1020, EndMinute: 1320,
			MinPartySize: 1, MaxPartySize: 10, Active: true,
		}},
		tables: []model.Table{{
			ID: "t1", VenueID: "v1", VenueName: "North",
			Capacity: 4, Seating: domain.SeatingIndoor,
			Status: domain.TableAvailable, Active: true,
		}},
	}
	h := newTestHandler(store)

	rec := httptest.NewRecorder()
	h.Search(rec, searchRequest(nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	var resp searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Tables) != 1 || resp.Tables[0].TableID != "t1" {
		t.Fatalf("tables = %+v, want one entry t1", resp.Tables)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
}

func TestSearchHandlerEmptyResultIsOK(t *testing.T) {
	h := newTestHandler(&stubStore{}) // no venues anywhere

	rec := httptest.NewRecorder()
	h.Search(rec, searchRequest(nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Tables == nil || len(resp.Tables) != 0 {
		t.Fatalf("tables = %v, want empty JSON array", resp.Tables)
	}
}

func TestSearchHandlerBadInput(t *testing.T) {
	cases := []struct {
		name   string
		params map[string]string
		field  string
	}{
		{"missing lat", map[string]string{"lat": ""}, "lat"},
		{"non-numeric radius", map[string]string{"radius_m": "wide"}, "radius_m"},
		{"negative radius", map[string]string{"radius_m": "-5"}, "radius_m"},
		{"bad date format", map[string]string{"date": "04/09/2026"}, "date"},
		{"bad time format", map[string]string{"time": "7pm"}, "time"},
		{"non-integer party size", map[string]string{"party_size": "two"}, "party_size"},
		{"party size out of range", map[string]string{"party_size": "50"}, "party_size"},
		{"unknown seating", map[string]string{"seating": "rooftop"}, "seating"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHandler(&stubStore{})
			rec := httptest.NewRecorder()
			h.Search(rec, searchRequest(tc.params))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400; body: %s", rec.Code, rec.Body.String())
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Field != tc.field {
				t.Fatalf("field = %q, want %q (error: %s)", resp.Field, tc.field, resp.Error)
			}
		})
	}
}

func TestSearchHandlerStoreUnavailable(t *testing.T) {
	h := newTestHandler(&stubStore{venuesErr: io.ErrUnexpectedEOF})

	rec := httptest.NewRecorder()
	h.Search(rec, searchRequest(nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestSearchHandlerTimeout(t *testing.T) {
	store := &stubStore{
		venues: []model.Venue{{ID: "v1"}},
		rules: []model.TimeRule{{
			VenueID: "v1", Weekday: time.Friday,
			StartMinute: 0, EndMinute: 1439,
			MinPartySize: 1, MaxPartySize: 20, Active: true,
		}},
		tables:       []model.Table{{ID: "t1", VenueID: "v1", Capacity: 4}},
		blackoutsErr: context.DeadlineExceeded,
	}
	h := newTestHandler(store)

	rec := httptest.NewRecorder()
	h.Search(rec, searchRequest(nil))

	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504", rec.Code)
	}
}

func TestSearchHandlerMethodNotAllowed(t *testing.T) {
	h := newTestHandler(&stubStore{})
	rec := httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodPost, "/api/v1/public/search", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
