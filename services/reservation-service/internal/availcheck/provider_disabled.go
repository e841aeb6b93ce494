//go:build !protogen

package availcheck

import (
	"context"
	"time"
)

// Provider answers whether a venue accepts a slot (time rules minus
// blackouts). A nil Provider means builds without the search client rely
// on the database's slot-exclusivity constraint alone.
type Provider interface {
	SlotEligible(ctx context.Context, venueID string, date time.Time, startMinute, partySize int) (bool, error)
}

func NewProvider(_ string) (Provider, error) {
	return nil, nil
}
