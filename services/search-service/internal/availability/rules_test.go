package availability

import (
	"testing"
	"time"

	"github.com/sajid-karim/tablebook/services/search-service/internal/model"
)

func rule(venueID string, weekday time.Weekday, start, end, minParty, maxParty int) model.TimeRule {
	return model.TimeRule{
		ID:           "rule-" + venueID,
		VenueID:      venueID,
		Weekday:      weekday,
		StartMinute:  start,
		EndMinute:    end,
		MinPartySize: minParty,
		MaxPartySize: maxParty,
		Active:       true,
	}
}

func TestRuleCovers(t *testing.T) {
	base := rule("v1", time.Friday, 1020, 1320, 2, 8) // 17:00-22:00, parties 2-8

	cases := []struct {
		name      string
		mutate    func(*model.TimeRule)
		weekday   time.Weekday
		minute    int
		partySize int
		want      bool
	}{
		{name: "inside window", weekday: time.Friday, minute: 1140, partySize: 4, want: true},
		{name: "at start minute", weekday: time.Friday, minute: 1020, partySize: 4, want: true},
		{name: "at end minute", weekday: time.Friday, minute: 1320, partySize: 4, want: true},
		{name: "one before start", weekday: time.Friday, minute: 1019, partySize: 4, want: false},
		{name: "one after end", weekday: time.Friday, minute: 1321, partySize: 4, want: false},
		{name: "at min party size", weekday: time.Friday, minute: 1140, partySize: 2, want: true},
		{name: "at max party size", weekday: time.Friday, minute: 1140, partySize: 8, want: true},
		{name: "below min party size", weekday: time.Friday, minute: 1140, partySize: 1, want: false},
		{name: "above max party size", weekday: time.Friday, minute: 1140, partySize: 9, want: false},
		{name: "wrong weekday", weekday: time.Saturday, minute: 1140, partySize: 4, want: false},
		{
			name:    "inactive rule",
			mutate:  func(r *model.TimeRule) { r.Active = false },
			weekday: time.Friday, minute: 1140, partySize: 4, want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := base
			if tc.mutate != nil {
				tc.mutate(&r)
			}
			if got := RuleCovers(r, tc.weekday, tc.minute, tc.partySize); got != tc.want {
				t.Fatalf("RuleCovers() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEligibleVenuesSubsetAndOrder(t *testing.T) {
	venueIDs := []string{"v1", "v2", "v3"}
	rules := []model.TimeRule{
		rule("v3", time.Friday, 1020, 1320, 1, 10),
		rule("v1", time.Friday, 1020, 1320, 1, 10),
		rule("v2", time.Friday, 600, 720, 1, 10), // lunch only, 19:00 misses it
	}

	got := EligibleVenues(venueIDs, rules, time.Friday, 1140, 4)
	want := []string{"v1", "v3"}
	if len(got) != len(want) {
		t.Fatalf("EligibleVenues() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("EligibleVenues() = %v, want %v (input order preserved)", got, want)
		}
	}
}

func TestEligibleVenuesOneMatchingRuleSuffices(t *testing.T) {
	rules := []model.TimeRule{
		rule("v1", time.Friday, 600, 720, 1, 10),    // misses
		rule("v1", time.Friday, 1020, 1320, 1, 10),  // covers
		func() model.TimeRule {                      // inactive duplicate
			r := rule("v1", time.Friday, 1020, 1320, 1, 10)
			r.Active = false
			return r
		}(),
	}

	got := EligibleVenues([]string{"v1"}, rules, time.Friday, 1140, 4)
	if len(got) != 1 || got[0] != "v1" {
		t.Fatalf("EligibleVenues() = %v, want [v1]", got)
	}
}

func TestEligibleVenuesNoRules(t *testing.T) {
	got := EligibleVenues([]string{"v1", "v2"}, nil, time.Monday, 1140, 2)
	if len(got) != 0 {
		t.Fatalf("EligibleVenues() with no rules = %v, want empty", got)
	}
}

func TestEligibleVenuesIgnoresRulesForUnknownVenues(t *testing.T) {
	rules := []model.TimeRule{rule("v9", time.Friday, 1020, 1320, 1, 10)}
	got := EligibleVenues([]string{"v1"}, rules, time.Friday, 1140, 2)
	if len(got) != 0 {
		t.Fatalf("EligibleVenues() = %v, want empty (v9 not in candidate set)", got)
	}
}
