package pricing

import (
	"math"

	"speedyvan/internal/types"
)

const (
	// VanCO2GramsPerKm is the tailpipe figure for a medium diesel van.
	VanCO2GramsPerKm = 229
	// OffsetGBPPerGram prices offsets at £0.005 per kg.
	OffsetGBPPerGram = 0.000005
	OffsetProvider   = "ecologi"
)

// CarbonEstimate is the CO2 of a trip and what offsetting it costs.
type CarbonEstimate struct {
	DistanceKm    float64 `json:"distanceKm"`
	EstimatedCO2g int     `json:"estimatedCO2g"`
	OffsetAmount  float64 `json:"offsetAmount"`
	Currency      string  `json:"currency"`
	Provider      string  `json:"provider"`
}

// EstimateCarbon rounds emissions to whole grams and the offset to pence.
func EstimateCarbon(distanceKm float64) CarbonEstimate {
	grams := int(math.Round(distanceKm * VanCO2GramsPerKm))
	return CarbonEstimate{
		DistanceKm:    distanceKm,
		EstimatedCO2g: grams,
		OffsetAmount:  roundCents(float64(grams) * OffsetGBPPerGram),
		Currency:      types.CurrencyGBP,
		Provider:      OffsetProvider,
	}
}
