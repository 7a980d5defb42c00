package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"speedyvan/internal/maps"
	"speedyvan/internal/modules/pricing"
	"speedyvan/internal/types"
)

var (
	ErrPostcodeNotFound = errors.New("postcode not found")
	ErrNoGeocoder       = errors.New("geocoder not configured")
)

// TripRequest is a quote request located by coordinates. Quote.DistanceKm is
// overwritten with the looked-up road distance.
type TripRequest struct {
	From  types.Point
	To    types.Point
	Quote pricing.QuoteRequest
}

type TripQuote struct {
	Quote    pricing.QuoteResponse
	Source   pricing.Source
	Distance maps.Estimate
}

// QuotePlanner resolves locations and distances before handing off to pricing.
type QuotePlanner struct {
	pricing  *pricing.Service
	distance maps.DistanceProvider
	geocoder maps.Geocoder
	log      *zap.Logger
}

// NewQuotePlanner wires the planner. distance and geocoder may be nil when no
// maps key is configured; distances then price as zero.
func NewQuotePlanner(pricingSvc *pricing.Service, distance maps.DistanceProvider, geocoder maps.Geocoder, log *zap.Logger) *QuotePlanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &QuotePlanner{
		pricing:  pricingSvc,
		distance: distance,
		geocoder: geocoder,
		log:      log,
	}
}

// Distance looks up the road distance without a fallback.
func (p *QuotePlanner) Distance(ctx context.Context, from, to types.Point) (maps.Estimate, error) {
	if p.distance == nil {
		return maps.Estimate{}, maps.ErrNoProvider
	}
	return p.distance.Distance(ctx, from, to)
}

// SearchAddress geocodes a free-text UK address, returning at most limit matches.
func (p *QuotePlanner) SearchAddress(ctx context.Context, address string, limit int) ([]maps.Location, error) {
	if p.geocoder == nil {
		return nil, ErrNoGeocoder
	}
	return p.geocoder.Search(ctx, address, limit)
}

// QuoteTrip prices a move between two points.
func (p *QuotePlanner) QuoteTrip(ctx context.Context, req TripRequest) TripQuote {
	est := maps.EstimateOrZero(ctx, p.distance, req.From, req.To, p.log)

	q := req.Quote
	q.DistanceKm = est.DistanceKm
	resp, source := p.pricing.Quote(ctx, q)

	p.log.Info("quote issued",
		zap.String("source", string(source)),
		zap.String("service_type", q.ServiceType),
		zap.Float64("distance_km", q.DistanceKm),
		zap.Float64("total_price", resp.TotalPrice),
	)
	return TripQuote{Quote: resp, Source: source, Distance: est}
}

// WidgetQuote geocodes two postcodes, prices the move and stores the quote.
func (p *QuotePlanner) WidgetQuote(ctx context.Context, fromPostcode, toPostcode, moveSize string) (*pricing.WidgetQuote, error) {
	if _, ok := pricing.WidgetVolume(moveSize); !ok {
		return nil, pricing.ErrInvalidMoveSize
	}
	if p.geocoder == nil {
		return nil, ErrNoGeocoder
	}

	from, err := p.geocodePostcode(ctx, fromPostcode)
	if err != nil {
		return nil, err
	}
	to, err := p.geocodePostcode(ctx, toPostcode)
	if err != nil {
		return nil, err
	}

	est := maps.EstimateOrZero(ctx, p.distance, from.Point, to.Point, p.log)
	return p.pricing.CreateWidgetQuote(ctx, pricing.WidgetCommand{
		FromPostcode: fromPostcode,
		ToPostcode:   toPostcode,
		MoveSize:     moveSize,
		From:         from,
		To:           to,
		DistanceKm:   est.DistanceKm,
	})
}

func (p *QuotePlanner) geocodePostcode(ctx context.Context, postcode string) (pricing.Place, error) {
	postcode = strings.ToUpper(strings.TrimSpace(postcode))
	loc, err := p.geocoder.Geocode(ctx, postcode+", UK")
	if errors.Is(err, maps.ErrAddressNotFound) {
		return pricing.Place{}, fmt.Errorf("%w: %s", ErrPostcodeNotFound, postcode)
	}
	if err != nil {
		return pricing.Place{}, err
	}

	place := pricing.Place{Point: loc.Point}
	if loc.FormattedAddress != "" {
		addr := loc.FormattedAddress
		place.Address = &addr
	}
	return place, nil
}
