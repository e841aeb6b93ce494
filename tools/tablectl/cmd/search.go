package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var (
		baseURL   string
		lat       float64
		lng       float64
		radius    float64
		date      string
		clock     string
		partySize int
		seating   string
	)

	c := &cobra.Command{
		Use:   "search",
		Short: "Query the search service for available tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
			q.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
			q.Set("radius_m", strconv.FormatFloat(radius, 'f', -1, 64))
			q.Set("date", date)
			q.Set("time", clock)
			q.Set("party_size", strconv.Itoa(partySize))
			if seating != "" {
				q.Set("seating", seating)
			}

			client := &http.Client{Timeout: 10 * time.Second}
			resp, err := client.Get(baseURL + "/api/v1/public/search?" + q.Encode())
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("search returned %d: %s", resp.StatusCode, body)
			}

			var pretty map[string]any
			if err := json.Unmarshal(body, &pretty); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			out, err := json.MarshalIndent(pretty, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	c.Flags().StringVar(&baseURL, "base-url", "http://localhost:8084", "search service base URL")
	c.Flags().Float64Var(&lat, "lat", 40.7128, "search center latitude")
	c.Flags().Float64Var(&lng, "lng", -74.0060, "search center longitude")
	c.Flags().Float64Var(&radius, "radius-m", 2000, "search radius in meters")
	c.Flags().StringVar(&date, "date", time.Now().Format("2006-01-02"), "reservation date (YYYY-MM-DD)")
	c.Flags().StringVar(&clock, "time", "19:00", "reservation time (HH:MM)")
	c.Flags().IntVar(&partySize, "party-size", 2, "party size")
	c.Flags().StringVar(&seating, "seating", "", "seating filter (indoor|outdoor|bar|private)")
	return c
}
