package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newValidationHandler() *ReservationHandler {
	// Repos stay nil: these tests only exercise request validation, which
	// rejects before any storage access.
	return NewReservationHandler(nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
}

func TestCreateRejectsBadRequests(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", `not json at all`},
		{"missing venue", `{"guest_name":"Ada","date":"2026-09-04","time":"19:00","party_size":2}`},
		{"missing guest name", `{"venue_id":"v1","date":"2026-09-04","time":"19:00","party_size":2}`},
		{"bad date", `{"venue_id":"v1","guest_name":"Ada","date":"Sept 4","time":"19:00","party_size":2}`},
		{"bad time", `{"venue_id":"v1","guest_name":"Ada","date":"2026-09-04","time":"7pm","party_size":2}`},
		{"zero party size", `{"venue_id":"v1","guest_name":"Ada","date":"2026-09-04","time":"19:00","party_size":0}`},
	}

	h := newValidationHandler()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(tc.body))
			h.Create(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400; body: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCreateMethodNotAllowed(t *testing.T) {
	h := newValidationHandler()
	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reservations", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestCancelRejectsBadRequests(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", `{{`},
		{"missing venue", `{"reservation_id":"r1"}`},
		{"missing reservation", `{"venue_id":"v1"}`},
	}

	h := newValidationHandler()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations/cancel", strings.NewReader(tc.body))
			h.Cancel(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400; body: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestListRequiresVenueAndDate(t *testing.T) {
	h := newValidationHandler()

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reservations/list?date=2026-09-04", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing venue_id: status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reservations/list?venue_id=v1&date=bad", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad date: status = %d, want 400", rec.Code)
	}
}

func TestMinuteToClock(t *testing.T) {
	cases := []struct {
		minute int
		want   string
	}{
		{0, "00:00"},
		{65, "01:05"},
		{1140, "19:00"},
		{1439, "23:59"},
	}
	for _, tc := range cases {
		if got := minuteToClock(tc.minute); got != tc.want {
			t.Fatalf("minuteToClock(%d) = %q, want %q", tc.minute, got, tc.want)
		}
	}
}
