// README: Distance lookups between two points and the zero-distance fallback.
package maps

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"

	"speedyvan/internal/metrics"
	"speedyvan/internal/types"
)

var (
	ErrNoRoute    = errors.New("no route found")
	ErrNoProvider = errors.New("distance provider not configured")
)

const earthRadiusKm = 6371.0

// Estimate is a road distance and drive time. Geometry is the encoded
// overview polyline of the route when the provider has one.
type Estimate struct {
	DistanceKm      float64 `json:"distance"`
	DurationMinutes int     `json:"duration"`
	Geometry        string  `json:"geometry,omitempty"`
}

type DistanceProvider interface {
	Distance(ctx context.Context, from, to types.Point) (Estimate, error)
}

// EstimateOrZero asks provider for the distance and returns a zero Estimate on
// any failure. Quotes priced from a zero distance undercharge, so the failure
// is logged together with the straight-line distance.
func EstimateOrZero(ctx context.Context, provider DistanceProvider, from, to types.Point, log *zap.Logger) Estimate {
	if provider == nil {
		logZeroDistance(log, from, to, ErrNoProvider)
		return Estimate{}
	}
	est, err := provider.Distance(ctx, from, to)
	if err != nil {
		logZeroDistance(log, from, to, err)
		return Estimate{}
	}
	metrics.RecordDistanceLookup("ok")
	return est
}

func logZeroDistance(log *zap.Logger, from, to types.Point, err error) {
	metrics.RecordDistanceLookup("zero_fallback")
	if log == nil {
		return
	}
	log.Warn("distance lookup failed, pricing with zero distance",
		zap.Float64("from_lat", from.Lat),
		zap.Float64("from_lng", from.Lng),
		zap.Float64("to_lat", to.Lat),
		zap.Float64("to_lng", to.Lng),
		zap.Float64("straight_line_km", roundKm(HaversineKm(from, to))),
		zap.Error(err),
	)
}

// HaversineKm returns the great-circle distance in kilometres.
func HaversineKm(a, b types.Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func roundKm(km float64) float64 {
	return math.Round(km*100) / 100
}
