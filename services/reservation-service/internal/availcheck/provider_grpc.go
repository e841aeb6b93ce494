//go:build protogen

package availcheck

import (
	"context"
	"time"

	"github.com/sajid-karim/tablebook/libs/grpcx"
	searchv1 "github.com/sajid-karim/tablebook/protos/gen/search/v1"
)

// Provider answers whether a venue accepts a slot (time rules minus
// blackouts). A nil Provider means builds without the search client rely
// on the database's slot-exclusivity constraint alone.
type Provider interface {
	SlotEligible(ctx context.Context, venueID string, date time.Time, startMinute, partySize int) (bool, error)
}

type grpcProvider struct {
	client searchv1.SearchServiceClient
}

func NewProvider(addr string) (Provider, error) {
	if addr == "" {
		return nil, nil
	}
	conn, err := grpcx.Dial(context.Background(), addr, grpcx.DialOptions{Timeout: 3 * time.Second})
	if err != nil {
		return nil, err
	}
	return &grpcProvider{client: searchv1.NewSearchServiceClient(conn)}, nil
}

func (p *grpcProvider) SlotEligible(ctx context.Context, venueID string, date time.Time, startMinute, partySize int) (bool, error) {
	resp, err := p.client.CheckSlot(ctx, &searchv1.CheckSlotRequest{
		VenueId:     venueID,
		Date:        date.Format("2006-01-02"),
		StartMinute: int32(startMinute),
		PartySize:   int32(partySize),
	})
	if err != nil {
		return false, err
	}
	return resp.GetEligible(), nil
}
