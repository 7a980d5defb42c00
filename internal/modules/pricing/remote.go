// README: Remote quote adapter: asks a text-generation backend for a quote and re-asserts local invariants.
package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"speedyvan/internal/ai"
	"speedyvan/internal/types"
)

// DefaultRemoteTimeout bounds a single remote quote call.
const DefaultRemoteTimeout = 8 * time.Second

// remoteQuote mirrors the JSON object the model is asked for. Pointers let
// validation tell a missing field from a zero one. Minutes decode as a float
// so 95.0 passes while 95.4 is rejected.
type remoteQuote struct {
	BasePrice                *float64         `json:"basePrice" validate:"required,gte=0"`
	DistancePrice            *float64         `json:"distancePrice" validate:"required,gte=0"`
	VolumePrice              *float64         `json:"volumePrice" validate:"required,gte=0"`
	Subtotal                 *float64         `json:"subtotal" validate:"required,gte=0"`
	Discount                 *float64         `json:"discount" validate:"required,gte=0"`
	TotalPrice               *float64         `json:"totalPrice" validate:"required,gte=0"`
	EstimatedDurationMinutes *float64         `json:"estimatedDurationMinutes" validate:"required,gte=0"`
	Currency                 string           `json:"currency" validate:"required,eq=GBP"`
	ValidUntil               *string          `json:"validUntil" validate:"required"`
	Breakdown                *remoteBreakdown `json:"breakdown" validate:"required"`
}

type remoteBreakdown struct {
	Base              *float64 `json:"base" validate:"required,gte=0"`
	Distance          *float64 `json:"distance" validate:"required,gte=0"`
	Volume            *float64 `json:"volume" validate:"required,gte=0"`
	ServiceMultiplier *float64 `json:"serviceMultiplier" validate:"required,gte=0"`
}

// RemoteQuoter prices a move through an LLM. It never trusts the model for
// the price floor or the validity timestamp.
type RemoteQuoter struct {
	gen     ai.TextGenerator
	cfg     Config
	timeout time.Duration
	clock   func() time.Time
}

type RemoteOption func(*RemoteQuoter)

func WithRemoteTimeout(d time.Duration) RemoteOption {
	return func(q *RemoteQuoter) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func WithRemoteClock(clock func() time.Time) RemoteOption {
	return func(q *RemoteQuoter) { q.clock = clock }
}

// NewRemoteQuoter returns a quoter backed by gen. A nil gen yields a quoter
// whose every call fails with ErrRemoteUnavailable.
func NewRemoteQuoter(gen ai.TextGenerator, cfg Config, opts ...RemoteOption) *RemoteQuoter {
	q := &RemoteQuoter{
		gen:     gen,
		cfg:     cfg,
		timeout: DefaultRemoteTimeout,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Name reports the backing generator, or "none".
func (q *RemoteQuoter) Name() string {
	if q == nil || q.gen == nil {
		return "none"
	}
	return q.gen.Name()
}

// Quote asks the model for a quote. It fails when no backend is configured,
// the call fails or times out, or the reply does not parse and validate.
func (q *RemoteQuoter) Quote(ctx context.Context, req QuoteRequest) (QuoteResponse, error) {
	if q == nil || q.gen == nil {
		return QuoteResponse{}, ErrRemoteUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	raw, err := q.gen.Generate(ctx, buildQuotePrompt(req, q.cfg))
	if err != nil {
		return QuoteResponse{}, fmt.Errorf("remote quote via %s: %w", q.gen.Name(), err)
	}
	return q.parseReply(raw)
}

func (q *RemoteQuoter) parseReply(raw string) (QuoteResponse, error) {
	payload, err := ai.ExtractJSON(raw)
	if err != nil {
		return QuoteResponse{}, fmt.Errorf("%w: %v", ErrRemoteReply, err)
	}

	var rq remoteQuote
	if err := json.Unmarshal(payload, &rq); err != nil {
		return QuoteResponse{}, fmt.Errorf("%w: %v", ErrRemoteSchema, err)
	}
	if err := validate.Struct(rq); err != nil {
		return QuoteResponse{}, fmt.Errorf("%w: %v", ErrRemoteSchema, err)
	}
	minutes := *rq.EstimatedDurationMinutes
	if minutes != math.Trunc(minutes) {
		return QuoteResponse{}, fmt.Errorf("%w: estimatedDurationMinutes %v is not a whole number", ErrRemoteSchema, minutes)
	}

	now := q.clock()
	validUntil, ok := parseTimestamp(*rq.ValidUntil)
	if !ok {
		validUntil = now.Add(QuoteValidity)
	}

	return QuoteResponse{
		BasePrice:                *rq.BasePrice,
		DistancePrice:            *rq.DistancePrice,
		VolumePrice:              *rq.VolumePrice,
		Subtotal:                 *rq.Subtotal,
		Discount:                 *rq.Discount,
		TotalPrice:               roundCents(math.Max(*rq.TotalPrice, q.cfg.MinPrice)),
		EstimatedDurationMinutes: int(minutes),
		Currency:                 types.CurrencyGBP,
		ValidUntil:               validUntil,
		Breakdown: QuoteBreakdown{
			Base:              *rq.Breakdown.Base,
			Distance:          *rq.Breakdown.Distance,
			Volume:            *rq.Breakdown.Volume,
			ServiceMultiplier: *rq.Breakdown.ServiceMultiplier,
		},
	}, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimestamp accepts the ISO 8601 shapes models tend to emit.
func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// buildQuotePrompt renders the request and the tariff in cfg as instructions.
func buildQuotePrompt(req QuoteRequest, cfg Config) string {
	services := make([]string, 0, len(cfg.ServiceMultipliers))
	for k := range cfg.ServiceMultipliers {
		services = append(services, k)
	}
	sort.Strings(services)
	multipliers := make([]string, 0, len(services))
	for _, k := range services {
		multipliers = append(multipliers, fmt.Sprintf("%s %g", k, cfg.ServiceMultipliers[k]))
	}

	return fmt.Sprintf(`You are a UK man-and-van moving company pricing expert. Generate a quote in GBP.

Inputs:
- distanceKm: %g
- volumeCubicMeters: %g
- serviceType: %s
- itemCount: %d
- pickupFloorNumber: %d (lift: %t)
- dropoffFloorNumber: %d (lift: %t)

Rules:
- Currency: GBP only.
- Minimum total price: £%g.
- Base fee typically around £%g; distance about £%g/km; volume about £%g per cubic meter.
- Stairs: add £%g per floor for each leg above ground floor without a lift, before the multiplier.
- Service multipliers: %s. Unknown service types use 1.0.
- subtotal = (base + distance + volume + stairs) * serviceMultiplier.
- If volumeCubicMeters >= %g apply a %g%% discount to the subtotal; then totalPrice; totalPrice must be >= %g.
- estimatedDurationMinutes: roughly 30 + 5*distanceKm + 3*volumeCubicMeters (integer).
- validUntil: ISO 8601 string for 24 hours from now.

Respond with a single JSON object only, no markdown or extra text. Schema:
{
  "basePrice": number,
  "distancePrice": number,
  "volumePrice": number,
  "subtotal": number,
  "discount": number,
  "totalPrice": number,
  "estimatedDurationMinutes": number,
  "currency": "GBP",
  "validUntil": "ISO8601 string",
  "breakdown": {
    "base": number,
    "distance": number,
    "volume": number,
    "serviceMultiplier": number
  }
}`,
		req.DistanceKm, req.VolumeCubicMeters, req.ServiceType, req.ItemCount,
		req.PickupFloorNumber, req.PickupHasLift, req.DropoffFloorNumber, req.DropoffHasLift,
		cfg.MinPrice, cfg.BasePrice, cfg.PricePerKm, cfg.PricePerCubicMeter,
		FloorFeePerLevel, strings.Join(multipliers, ", "),
		cfg.BulkDiscount.VolumeThreshold, cfg.BulkDiscount.DiscountPercent, cfg.MinPrice,
	)
}

// remoteFailureReason classifies a remote quote error for metric labels.
func remoteFailureReason(err error) string {
	switch {
	case errors.Is(err, ErrRemoteUnavailable):
		return "unavailable"
	case errors.Is(err, ErrRemoteReply):
		return "malformed"
	case errors.Is(err, ErrRemoteSchema):
		return "schema"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "transport"
	}
}
