//go:build protogen

package grpcserver

import (
	"context"
	"errors"
	"time"

	"github.com/sajid-karim/tablebook/libs/domain"
	searchv1 "github.com/sajid-karim/tablebook/protos/gen/search/v1"
	"github.com/sajid-karim/tablebook/services/search-service/internal/availability"
	"github.com/sajid-karim/tablebook/services/search-service/internal/model"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type server struct {
	searchv1.UnimplementedSearchServiceServer
	resolver *availability.Resolver
}

func Register(grpcServer *grpc.Server, resolver *availability.Resolver) {
	searchv1.RegisterSearchServiceServer(grpcServer, &server{resolver: resolver})
}

func (s *server) SearchTables(ctx context.Context, req *searchv1.SearchTablesRequest) (*searchv1.SearchTablesResponse, error) {
	date, err := time.Parse("2006-01-02", req.GetDate())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "date: must be YYYY-MM-DD")
	}

	tables, err := s.resolver.SearchAvailable(ctx, availability.Query{
		Center:       model.GeoPoint{Lat: req.GetLat(), Lng: req.GetLng()},
		RadiusMeters: req.GetRadiusMeters(),
		Date:         date,
		Minute:       int(req.GetStartMinute()),
		PartySize:    int(req.GetPartySize()),
		Seating:      domain.SeatingCategory(req.GetSeating()),
	})
	if err != nil {
		return nil, toStatus(err)
	}

	resp := &searchv1.SearchTablesResponse{}
	for _, t := range tables {
		resp.Tables = append(resp.Tables, &searchv1.Table{
			TableId:      t.ID,
			VenueId:      t.VenueID,
			VenueName:    t.VenueName,
			VenueAddress: t.VenueAddress,
			Capacity:     int32(t.Capacity),
			Seating:      string(t.Seating),
		})
	}
	return resp, nil
}

func (s *server) CheckSlot(ctx context.Context, req *searchv1.CheckSlotRequest) (*searchv1.CheckSlotResponse, error) {
	if req.GetVenueId() == "" {
		return nil, status.Error(codes.InvalidArgument, "venue_id: is required")
	}
	date, err := time.Parse("2006-01-02", req.GetDate())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "date: must be YYYY-MM-DD")
	}

	eligible, err := s.resolver.CheckSlot(ctx, req.GetVenueId(), date, int(req.GetStartMinute()), int(req.GetPartySize()))
	if err != nil {
		return nil, toStatus(err)
	}
	return &searchv1.CheckSlotResponse{Eligible: eligible}, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, availability.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, availability.ErrTimeout):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Unavailable, err.Error())
	}
}
