// README: Postcode quote widget value objects.
package pricing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"speedyvan/internal/types"
)

var (
	ErrInvalidMoveSize = errors.New("invalid move size")
	ErrNoStore         = errors.New("quote store not configured")
)

const (
	MoveSizeSmall  = "small"
	MoveSizeMedium = "medium"
	MoveSizeLarge  = "large"

	widgetItemCount = 5
	kmToMiles       = 0.621371
)

var widgetVolumes = map[string]float64{
	MoveSizeSmall:  5,
	MoveSizeMedium: 10,
	MoveSizeLarge:  20,
}

// WidgetVolume maps a move size to the cubic metres it is priced at.
func WidgetVolume(moveSize string) (float64, bool) {
	v, ok := widgetVolumes[moveSize]
	return v, ok
}

// KmToMiles converts and rounds to two decimals.
func KmToMiles(km float64) float64 {
	return decimal.NewFromFloat(km).Mul(decimal.NewFromFloat(kmToMiles)).Round(2).InexactFloat64()
}

// Place is a geocoded postcode.
type Place struct {
	Point   types.Point
	Address *string
}

type WidgetCommand struct {
	FromPostcode string
	ToPostcode   string
	MoveSize     string
	From         Place
	To           Place
	DistanceKm   float64
}

type WidgetQuote struct {
	ID                string      `json:"quoteId"`
	FromPostcode      string      `json:"fromPostcode"`
	ToPostcode        string      `json:"toPostcode"`
	MoveSize          string      `json:"moveSize"`
	FromAddress       *string     `json:"fromAddress"`
	ToAddress         *string     `json:"toAddress"`
	Pickup            types.Point `json:"-"`
	Dropoff           types.Point `json:"-"`
	PriceGBP          float64     `json:"priceGBP"`
	DistanceMiles     float64     `json:"distanceMiles"`
	EtaMinutes        int         `json:"etaMinutes"`
	VolumeCubicMeters float64     `json:"volumeCubicMeters"`
	CreatedAt         time.Time   `json:"createdAt"`
}
