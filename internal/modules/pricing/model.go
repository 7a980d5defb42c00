// README: Pricing configuration, quote request/response and price-lock value objects.
package pricing

import (
	"errors"
	"time"
)

var (
	ErrRemoteUnavailable = errors.New("remote quoting not configured")
	ErrRemoteReply       = errors.New("remote quote reply malformed")
	ErrRemoteSchema      = errors.New("remote quote reply failed validation")
	ErrInvalidConfig     = errors.New("invalid pricing config")
	ErrQuoteNotFound     = errors.New("quote not found")
)

const (
	// FloorFeePerLevel is charged per storey climbed without a lift, per leg.
	FloorFeePerLevel = 5.0
	// QuoteValidity is how long an issued quote stays valid.
	QuoteValidity = 24 * time.Hour

	DefaultLockDays = 7
	lockFeeRate     = 0.02
	lockFeeMin      = 5.0
	lockFeeMax      = 25.0

	baseDurationMinutes     = 30.0
	durationMinutesPerKm    = 5.0
	durationMinutesPerCubic = 3.0
)

// Service type keys of the built-in multiplier table.
const (
	ServiceHouseMove    = "house_move"
	ServiceOfficeMove   = "office_move"
	ServiceSingleItem   = "single_item"
	ServiceStudentMove  = "student_move"
	ServiceEbayDelivery = "ebay_delivery"
)

type BulkDiscount struct {
	VolumeThreshold float64 `json:"volumeThreshold" validate:"gt=0"`
	DiscountPercent float64 `json:"discountPercent" validate:"gte=0,lte=100"`
}

// Config is read-only once built. Callers pass it explicitly to every calculation.
type Config struct {
	BasePrice          float64            `json:"basePrice" validate:"gt=0"`
	PricePerKm         float64            `json:"pricePerKm" validate:"gt=0"`
	PricePerCubicMeter float64            `json:"pricePerCubicMeter" validate:"gt=0"`
	MinPrice           float64            `json:"minPrice" validate:"gt=0"`
	ServiceMultipliers map[string]float64 `json:"serviceMultipliers" validate:"required,dive,keys,required,endkeys,gt=0"`
	BulkDiscount       BulkDiscount       `json:"bulkDiscount"`
}

// DefaultConfig returns a fresh copy of the built-in GBP tariff.
func DefaultConfig() Config {
	return Config{
		BasePrice:          35,
		PricePerKm:         1.5,
		PricePerCubicMeter: 15,
		MinPrice:           60,
		ServiceMultipliers: map[string]float64{
			ServiceHouseMove:    1.0,
			ServiceOfficeMove:   1.2,
			ServiceSingleItem:   0.8,
			ServiceStudentMove:  0.9,
			ServiceEbayDelivery: 0.7,
		},
		BulkDiscount: BulkDiscount{
			VolumeThreshold: 20,
			DiscountPercent: 10,
		},
	}
}

// Multiplier returns the multiplier for serviceType, or 1.0 when the type is unknown.
func (c Config) Multiplier(serviceType string) float64 {
	if m, ok := c.ServiceMultipliers[serviceType]; ok && m > 0 {
		return m
	}
	return 1.0
}

// QuoteRequest describes one move. Zero floor numbers and false lift flags mean
// ground floor and no lift. ItemCount is carried for display and the remote prompt;
// it does not affect price.
type QuoteRequest struct {
	DistanceKm         float64 `json:"distanceKm"`
	VolumeCubicMeters  float64 `json:"volumeCubicMeters"`
	ServiceType        string  `json:"serviceType"`
	ItemCount          int     `json:"itemCount"`
	PickupFloorNumber  int     `json:"pickupFloorNumber,omitempty"`
	PickupHasLift      bool    `json:"pickupHasLift,omitempty"`
	DropoffFloorNumber int     `json:"dropoffFloorNumber,omitempty"`
	DropoffHasLift     bool    `json:"dropoffHasLift,omitempty"`
}

type QuoteBreakdown struct {
	Base              float64 `json:"base"`
	Distance          float64 `json:"distance"`
	Volume            float64 `json:"volume"`
	ServiceMultiplier float64 `json:"serviceMultiplier"`
}

type QuoteResponse struct {
	BasePrice                float64        `json:"basePrice"`
	DistancePrice            float64        `json:"distancePrice"`
	VolumePrice              float64        `json:"volumePrice"`
	Subtotal                 float64        `json:"subtotal"`
	Discount                 float64        `json:"discount"`
	TotalPrice               float64        `json:"totalPrice"`
	EstimatedDurationMinutes int            `json:"estimatedDurationMinutes"`
	Currency                 string         `json:"currency"`
	ValidUntil               time.Time      `json:"validUntil"`
	Breakdown                QuoteBreakdown `json:"breakdown"`
}

type PriceLockResult struct {
	LockFee     float64   `json:"lockFee"`
	LockedPrice float64   `json:"lockedPrice"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Source records which calculator produced a quote.
type Source string

const (
	SourceRemote        Source = "remote"
	SourceDeterministic Source = "deterministic"
	SourceFallback      Source = "fallback"
)
