package availability

import (
	"testing"
	"time"

	"github.com/sajid-karim/tablebook/libs/domain"
	"github.com/sajid-karim/tablebook/services/search-service/internal/model"
)

func datePtr(t time.Time) *time.Time { return &t }
func intPtr(n int) *int              { return &n }
func strPtr(s string) *string        { return &s }

func TestBlackoutApplies(t *testing.T) {
	friday := time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		rule   model.BlackoutRule
		date   time.Time
		minute int
		want   bool
	}{
		{
			name: "one-off on its date, all day",
			rule: model.BlackoutRule{VenueID: "v1", Date: datePtr(friday)},
			date: friday, minute: 1140, want: true,
		},
		{
			name: "one-off on another date",
			rule: model.BlackoutRule{VenueID: "v1", Date: datePtr(friday)},
			date: friday.AddDate(0, 0, 1), minute: 1140, want: false,
		},
		{
			name: "one-off missing date never applies",
			rule: model.BlackoutRule{VenueID: "v1"},
			date: friday, minute: 1140, want: false,
		},
		{
			name: "recurring matches weekday",
			rule: model.BlackoutRule{VenueID: "v1", Recurring: true, Weekday: time.Friday},
			date: friday, minute: 1140, want: true,
		},
		{
			name: "recurring other weekday",
			rule: model.BlackoutRule{VenueID: "v1", Recurring: true, Weekday: time.Monday},
			date: friday, minute: 1140, want: false,
		},
		{
			name: "bounded window, inside",
			rule: model.BlackoutRule{VenueID: "v1", Date: datePtr(friday), StartMinute: intPtr(1080), EndMinute: intPtr(1200)},
			date: friday, minute: 1140, want: true,
		},
		{
			name: "bounded window, at start",
			rule: model.BlackoutRule{VenueID: "v1", Date: datePtr(friday), StartMinute: intPtr(1080), EndMinute: intPtr(1200)},
			date: friday, minute: 1080, want: true,
		},
		{
			name: "bounded window, at end",
			rule: model.BlackoutRule{VenueID: "v1", Date: datePtr(friday), StartMinute: intPtr(1080), EndMinute: intPtr(1200)},
			date: friday, minute: 1200, want: true,
		},
		{
			name: "bounded window, before start",
			rule: model.BlackoutRule{VenueID: "v1", Date: datePtr(friday), StartMinute: intPtr(1080), EndMinute: intPtr(1200)},
			date: friday, minute: 1079, want: false,
		},
		{
			name: "bounded window, after end",
			rule: model.BlackoutRule{VenueID: "v1", Date: datePtr(friday), StartMinute: intPtr(1080), EndMinute: intPtr(1200)},
			date: friday, minute: 1201, want: false,
		},
		{
			name: "one bound missing closes whole day",
			rule: model.BlackoutRule{VenueID: "v1", Date: datePtr(friday), StartMinute: intPtr(1080)},
			date: friday, minute: 0, want: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := BlackoutApplies(tc.rule, tc.date, tc.minute); got != tc.want {
				t.Fatalf("BlackoutApplies() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestConflictSets(t *testing.T) {
	reservations := []model.Reservation{
		{ID: "r1", VenueID: "v1", TableID: strPtr("t1"), Status: domain.ReservationConfirmed},
		{ID: "r2", VenueID: "v2", Status: domain.ReservationPending}, // no table yet
		{ID: "r3", VenueID: "v3", TableID: strPtr("t3"), Status: domain.ReservationCancelled},
		{ID: "r4", VenueID: "v4", TableID: strPtr("t4"), Status: domain.ReservationCompleted},
		{ID: "r5", VenueID: "v5", TableID: strPtr("t5"), Status: domain.ReservationSeated},
	}

	heldTables, heldVenues := ConflictSets(reservations)

	if _, ok := heldTables["t1"]; !ok {
		t.Fatalf("confirmed reservation should pin its table")
	}
	if _, ok := heldTables["t5"]; !ok {
		t.Fatalf("seated reservation should pin its table")
	}
	if _, ok := heldTables["t3"]; ok {
		t.Fatalf("cancelled reservation must not pin a table")
	}
	if _, ok := heldTables["t4"]; ok {
		t.Fatalf("completed reservation must not pin a table")
	}
	if _, ok := heldVenues["v2"]; !ok {
		t.Fatalf("table-less pending reservation should hold its venue")
	}
	if len(heldVenues) != 1 {
		t.Fatalf("heldVenues = %v, want only v2", heldVenues)
	}
}

func TestExcludeIsMonotoneSubset(t *testing.T) {
	tables := []model.Table{
		{ID: "t1", VenueID: "v1"},
		{ID: "t2", VenueID: "v1"},
		{ID: "t3", VenueID: "v2"},
		{ID: "t4", VenueID: "v3"},
	}
	blackedOut := map[string]struct{}{"v2": {}}
	heldTables := map[string]struct{}{"t2": {}}
	heldVenues := map[string]struct{}{"v3": {}}

	got := Exclude(tables, blackedOut, heldTables, heldVenues)

	if len(got) != 1 || got[0].ID != "t1" {
		t.Fatalf("Exclude() = %v, want only t1", got)
	}

	in := make(map[string]struct{}, len(tables))
	for _, tb := range tables {
		in[tb.ID] = struct{}{}
	}
	for _, tb := range got {
		if _, ok := in[tb.ID]; !ok {
			t.Fatalf("Exclude() invented table %q", tb.ID)
		}
	}
}

func TestExcludeNothingHeld(t *testing.T) {
	tables := []model.Table{{ID: "t1", VenueID: "v1"}, {ID: "t2", VenueID: "v2"}}
	got := Exclude(tables, map[string]struct{}{}, map[string]struct{}{}, map[string]struct{}{})
	if len(got) != len(tables) {
		t.Fatalf("Exclude() with empty conflict sets dropped tables: got %d, want %d", len(got), len(tables))
	}
}
