package maps

import (
	"context"
	"fmt"
	"math"

	"googlemaps.github.io/maps"

	"speedyvan/internal/types"
)

const ukRegion = "uk"

// RouteService handles interactions with the Google Directions API.
type RouteService struct {
	client *maps.Client
}

// NewRouteService creates a new RouteService with the given API Key.
func NewRouteService(apiKey string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// Distance returns the driving distance and time of the first route's first leg.
func (s *RouteService) Distance(ctx context.Context, from, to types.Point) (Estimate, error) {
	r := &maps.DirectionsRequest{
		Origin:      latLng(from),
		Destination: latLng(to),
		Mode:        maps.TravelModeDriving,
		Region:      ukRegion,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return Estimate{}, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return Estimate{}, ErrNoRoute
	}

	leg := routes[0].Legs[0]
	est := legEstimate(leg.Distance.Meters, leg.Duration.Minutes())
	est.Geometry = routes[0].OverviewPolyline.Points
	return est, nil
}

func legEstimate(meters int, minutes float64) Estimate {
	return Estimate{
		DistanceKm:      roundKm(float64(meters) / 1000),
		DurationMinutes: int(math.Ceil(minutes)),
	}
}

func latLng(p types.Point) string {
	return fmt.Sprintf("%f,%f", p.Lat, p.Lng)
}
