// README: Deterministic quote and price-lock calculators. Pure functions over an injected Config.
package pricing

import (
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"speedyvan/internal/types"
)

var validate = validator.New()

// Validate checks the tariff constraints: every rate and the minimum strictly
// positive, multipliers positive, discount percent within [0,100].
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// FloorSurcharge is the pre-multiplier access fee for both legs of a move.
// A leg is charged only when it is above ground and has no lift.
func FloorSurcharge(req QuoteRequest) float64 {
	var surcharge float64
	if req.PickupFloorNumber > 0 && !req.PickupHasLift {
		surcharge += float64(req.PickupFloorNumber) * FloorFeePerLevel
	}
	if req.DropoffFloorNumber > 0 && !req.DropoffHasLift {
		surcharge += float64(req.DropoffFloorNumber) * FloorFeePerLevel
	}
	return surcharge
}

// CalculateQuote prices a move. It never fails; range checks on the request
// belong to the caller. The total is floored at cfg.MinPrice after the bulk
// discount and rounded to pence.
func CalculateQuote(req QuoteRequest, cfg Config, now time.Time) QuoteResponse {
	multiplier := cfg.Multiplier(req.ServiceType)

	basePrice := cfg.BasePrice
	distancePrice := req.DistanceKm * cfg.PricePerKm
	volumePrice := req.VolumeCubicMeters * cfg.PricePerCubicMeter

	subtotal := (basePrice + distancePrice + volumePrice + FloorSurcharge(req)) * multiplier

	var discount float64
	if req.VolumeCubicMeters >= cfg.BulkDiscount.VolumeThreshold {
		discount = subtotal * (cfg.BulkDiscount.DiscountPercent / 100)
	}

	total := math.Max(subtotal-discount, cfg.MinPrice)

	return QuoteResponse{
		BasePrice:                basePrice,
		DistancePrice:            distancePrice,
		VolumePrice:              volumePrice,
		Subtotal:                 subtotal,
		Discount:                 discount,
		TotalPrice:               roundCents(total),
		EstimatedDurationMinutes: EstimateDurationMinutes(req.DistanceKm, req.VolumeCubicMeters),
		Currency:                 types.CurrencyGBP,
		ValidUntil:               now.Add(QuoteValidity),
		Breakdown: QuoteBreakdown{
			Base:              basePrice,
			Distance:          distancePrice,
			Volume:            volumePrice,
			ServiceMultiplier: multiplier,
		},
	}
}

// EstimateDurationMinutes is 30 minutes plus 5 per km and 3 per cubic metre,
// rounded to the nearest minute.
func EstimateDurationMinutes(distanceKm, volumeCubicMeters float64) int {
	minutes := baseDurationMinutes + distanceKm*durationMinutesPerKm + volumeCubicMeters*durationMinutesPerCubic
	return int(math.Round(minutes))
}

// CalculatePriceLock returns the fee for holding quotePrice for lockDays days.
// The fee is 2% of the price clamped to [5, 25]. lockDays <= 0 selects DefaultLockDays.
func CalculatePriceLock(quotePrice float64, lockDays int, now time.Time) PriceLockResult {
	if lockDays <= 0 {
		lockDays = DefaultLockDays
	}
	fee := math.Min(lockFeeMax, math.Max(lockFeeMin, quotePrice*lockFeeRate))

	return PriceLockResult{
		LockFee:     roundCents(fee),
		LockedPrice: roundCents(quotePrice + fee),
		ExpiresAt:   now.AddDate(0, 0, lockDays),
	}
}

// roundCents rounds half away from zero to two decimal places.
func roundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
