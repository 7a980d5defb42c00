package maps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"speedyvan/internal/types"
)

var ErrAddressNotFound = errors.New("address not found")

// MaxSearchResults caps Search.
const MaxSearchResults = 5

// Location is a geocoded address. Text is the short name of the most
// specific component, e.g. the postcode or street.
type Location struct {
	Point            types.Point
	FormattedAddress string
	Text             string
}

type Geocoder interface {
	Geocode(ctx context.Context, address string) (Location, error)
	Search(ctx context.Context, address string, limit int) ([]Location, error)
}

// GeocodeService resolves UK postcodes and addresses with the Google Geocoding API.
type GeocodeService struct {
	client *maps.Client
}

func NewGeocodeService(apiKey string) (*GeocodeService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GeocodeService{client: client}, nil
}

// Geocode returns the best match for address.
func (s *GeocodeService) Geocode(ctx context.Context, address string) (Location, error) {
	locs, err := s.Search(ctx, address, 1)
	if err != nil {
		return Location{}, err
	}
	return locs[0], nil
}

// Search returns up to limit matches inside the UK, best first.
func (s *GeocodeService) Search(ctx context.Context, address string, limit int) ([]Location, error) {
	results, err := s.client.Geocode(ctx, &maps.GeocodingRequest{
		Address: address,
		Region:  ukRegion,
		Components: map[maps.Component]string{
			maps.ComponentCountry: "GB",
		},
	})
	if err != nil {
		if strings.Contains(err.Error(), "ZERO_RESULTS") {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("geocode %q: %w", address, err)
	}

	locs := toLocations(results, limit)
	if len(locs) == 0 {
		return nil, ErrAddressNotFound
	}
	return locs, nil
}

func toLocations(results []maps.GeocodingResult, limit int) []Location {
	if limit < 1 {
		limit = 1
	}
	if limit > MaxSearchResults {
		limit = MaxSearchResults
	}
	if len(results) > limit {
		results = results[:limit]
	}

	locs := make([]Location, 0, len(results))
	for _, r := range results {
		loc := Location{
			Point: types.Point{
				Lat: r.Geometry.Location.Lat,
				Lng: r.Geometry.Location.Lng,
			},
			FormattedAddress: r.FormattedAddress,
		}
		if len(r.AddressComponents) > 0 {
			loc.Text = r.AddressComponents[0].LongName
		}
		locs = append(locs, loc)
	}
	return locs
}
