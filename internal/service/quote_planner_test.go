package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"speedyvan/internal/maps"
	"speedyvan/internal/modules/pricing"
	"speedyvan/internal/types"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type stubDistance struct {
	est maps.Estimate
	err error
}

func (s stubDistance) Distance(_ context.Context, _, _ types.Point) (maps.Estimate, error) {
	return s.est, s.err
}

type stubGeocoder struct {
	known map[string]maps.Location
}

func (g stubGeocoder) Geocode(_ context.Context, address string) (maps.Location, error) {
	loc, ok := g.known[address]
	if !ok {
		return maps.Location{}, maps.ErrAddressNotFound
	}
	return loc, nil
}

func (g stubGeocoder) Search(ctx context.Context, address string, limit int) ([]maps.Location, error) {
	loc, err := g.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}
	out := []maps.Location{loc}
	for len(out) < limit {
		out = append(out, loc)
	}
	return out, nil
}

type memoryStore struct {
	saved map[string]*pricing.WidgetQuote
}

func (m *memoryStore) SaveWidgetQuote(_ context.Context, q *pricing.WidgetQuote) error {
	m.saved[q.ID] = q
	return nil
}

func (m *memoryStore) GetWidgetQuote(_ context.Context, id string) (*pricing.WidgetQuote, error) {
	q, ok := m.saved[id]
	if !ok {
		return nil, pricing.ErrQuoteNotFound
	}
	return q, nil
}

func newPlanner(dist maps.DistanceProvider, geo maps.Geocoder) (*QuotePlanner, *memoryStore) {
	store := &memoryStore{saved: map[string]*pricing.WidgetQuote{}}
	svc := pricing.NewService(pricing.DefaultConfig(),
		pricing.WithStore(store),
		pricing.WithClock(func() time.Time { return fixedNow }),
	)
	return NewQuotePlanner(svc, dist, geo, nil), store
}

func testGeocoder() stubGeocoder {
	return stubGeocoder{known: map[string]maps.Location{
		"SW1A 1AA, UK": {Point: types.Point{Lat: 51.501, Lng: -0.1416}, FormattedAddress: "London SW1A 1AA, UK"},
		"M1 1AE, UK":   {Point: types.Point{Lat: 53.4794, Lng: -2.2453}},
	}}
}

func TestQuoteTrip_UsesLookedUpDistance(t *testing.T) {
	p, _ := newPlanner(stubDistance{est: maps.Estimate{DistanceKm: 10, DurationMinutes: 18}}, nil)

	got := p.QuoteTrip(context.Background(), TripRequest{
		Quote: pricing.QuoteRequest{
			DistanceKm:        500,
			VolumeCubicMeters: 5,
			ServiceType:       pricing.ServiceHouseMove,
			ItemCount:         3,
		},
	})

	if got.Source != pricing.SourceDeterministic {
		t.Errorf("source = %s, want deterministic", got.Source)
	}
	if got.Quote.TotalPrice != 125 {
		t.Errorf("total = %v, want 125", got.Quote.TotalPrice)
	}
	if got.Distance.DurationMinutes != 18 {
		t.Errorf("distance duration = %d, want 18", got.Distance.DurationMinutes)
	}
}

func TestQuoteTrip_DistanceFailurePricesZeroKm(t *testing.T) {
	p, _ := newPlanner(stubDistance{err: errors.New("maps down")}, nil)

	got := p.QuoteTrip(context.Background(), TripRequest{
		Quote: pricing.QuoteRequest{VolumeCubicMeters: 2, ServiceType: pricing.ServiceHouseMove, ItemCount: 1},
	})

	if got.Quote.DistancePrice != 0 {
		t.Errorf("distance price = %v, want 0", got.Quote.DistancePrice)
	}
	if got.Quote.TotalPrice != 65 {
		t.Errorf("total = %v, want 65", got.Quote.TotalPrice)
	}
}

func TestWidgetQuote_StoresDeterministicQuote(t *testing.T) {
	p, store := newPlanner(stubDistance{est: maps.Estimate{DistanceKm: 100}}, testGeocoder())

	q, err := p.WidgetQuote(context.Background(), " sw1a 1aa ", "M1 1AE", pricing.MoveSizeMedium)
	if err != nil {
		t.Fatalf("widget quote: %v", err)
	}

	// 35 + 150 + 150 = 335
	if q.PriceGBP != 335 {
		t.Errorf("price = %v, want 335", q.PriceGBP)
	}
	if q.DistanceMiles != 62.14 {
		t.Errorf("miles = %v, want 62.14", q.DistanceMiles)
	}
	if q.EtaMinutes != 560 {
		t.Errorf("eta = %d, want 560", q.EtaMinutes)
	}
	if q.FromPostcode != "SW1A 1AA" {
		t.Errorf("from postcode = %q", q.FromPostcode)
	}
	if q.FromAddress == nil || !strings.Contains(*q.FromAddress, "SW1A") {
		t.Errorf("from address = %v", q.FromAddress)
	}
	if q.ToAddress != nil {
		t.Errorf("to address = %v, want nil", *q.ToAddress)
	}
	if _, ok := store.saved[q.ID]; !ok {
		t.Error("quote not persisted")
	}
}

func TestWidgetQuote_Errors(t *testing.T) {
	tests := []struct {
		name     string
		geo      maps.Geocoder
		from, to string
		size     string
		wantErr  error
	}{
		{"unknown postcode", testGeocoder(), "ZZ9 9ZZ", "M1 1AE", pricing.MoveSizeSmall, ErrPostcodeNotFound},
		{"bad move size", testGeocoder(), "SW1A 1AA", "M1 1AE", "huge", pricing.ErrInvalidMoveSize},
		{"no geocoder", nil, "SW1A 1AA", "M1 1AE", pricing.MoveSizeLarge, ErrNoGeocoder},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, store := newPlanner(stubDistance{}, tc.geo)
			_, err := p.WidgetQuote(context.Background(), tc.from, tc.to, tc.size)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if len(store.saved) != 0 {
				t.Error("nothing should be stored on error")
			}
		})
	}
}

func TestDistance_NoProvider(t *testing.T) {
	p, _ := newPlanner(nil, nil)
	if _, err := p.Distance(context.Background(), types.Point{}, types.Point{}); !errors.Is(err, maps.ErrNoProvider) {
		t.Errorf("err = %v, want ErrNoProvider", err)
	}
}

func TestSearchAddress(t *testing.T) {
	p, _ := newPlanner(nil, testGeocoder())

	got, err := p.SearchAddress(context.Background(), "SW1A 1AA, UK", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 || got[0].FormattedAddress != "London SW1A 1AA, UK" {
		t.Errorf("unexpected results %+v", got)
	}

	if _, err := p.SearchAddress(context.Background(), "nowhere", 1); !errors.Is(err, maps.ErrAddressNotFound) {
		t.Errorf("err = %v, want ErrAddressNotFound", err)
	}

	bare, _ := newPlanner(nil, nil)
	if _, err := bare.SearchAddress(context.Background(), "SW1A 1AA", 1); !errors.Is(err, ErrNoGeocoder) {
		t.Errorf("err = %v, want ErrNoGeocoder", err)
	}
}
