// README: Shared value objects used across modules (coordinates, currency).
package types

// CurrencyGBP is the only currency quotes are issued in.
const CurrencyGBP = "GBP"

// Point is a WGS84 coordinate pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
