package cmd

import (
	"context"
	"fmt"

	"github.com/sajid-karim/tablebook/libs/config"
	"github.com/sajid-karim/tablebook/libs/db"
	"github.com/sajid-karim/tablebook/tools/tablectl/internal/migrate"
	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	var (
		name      string
		address   string
		lat       float64
		lng       float64
		tableSpec []string
	)

	c := &cobra.Command{
		Use:   "seed",
		Short: "Create a demo venue with open hours and tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbURL, err := config.RequiredString("DATABASE_URL")
			if err != nil {
				return err
			}
			ctx := context.Background()
			pool, err := db.Open(ctx, dbURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := migrate.Up(ctx, pool); err != nil {
				return err
			}

			var venueID string
			err = pool.QueryRow(ctx, `
				INSERT INTO venues (name, address, lat, lng)
				VALUES ($1, $2, $3, $4)
				RETURNING id::text
			`, name, address, lat, lng).Scan(&venueID)
			if err != nil {
				return err
			}

			// Open every day 17:00 to 22:00, parties of 1 to 12.
			for weekday := 0; weekday < 7; weekday++ {
				_, err := pool.Exec(ctx, `
					INSERT INTO time_rules (venue_id, weekday, start_minute, end_minute, min_party_size, max_party_size)
					VALUES ($1, $2, 1020, 1320, 1, 12)
				`, venueID, weekday)
				if err != nil {
					return err
				}
			}

			for _, spec := range tableSpec {
				var capacity int
				var seating string
				if _, err := fmt.Sscanf(spec, "%d:%s", &capacity, &seating); err != nil {
					return fmt.Errorf("bad table spec %q, want CAPACITY:SEATING", spec)
				}
				_, err := pool.Exec(ctx, `
					INSERT INTO tables (venue_id, capacity, seating)
					VALUES ($1, $2, $3)
				`, venueID, capacity, seating)
				if err != nil {
					return err
				}
			}

			fmt.Printf("venue %s seeded with %d tables\n", venueID, len(tableSpec))
			return nil
		},
	}

	c.Flags().StringVar(&name, "name", "Demo Bistro", "venue name")
	c.Flags().StringVar(&address, "address", "1 Demo Street", "venue address")
	c.Flags().Float64Var(&lat, "lat", 40.7128, "venue latitude")
	c.Flags().Float64Var(&lng, "lng", -74.0060, "venue longitude")
	c.Flags().StringSliceVar(&tableSpec, "table", []string{"2:indoor", "4:indoor", "4:outdoor", "6:private"}, "table as CAPACITY:SEATING, repeatable")
	return c
}
