// README: Pricing service selects the remote or deterministic calculator and owns widget quotes.
package pricing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"speedyvan/internal/metrics"
)

// RemoteQuoting is the optional remote pricing path.
type RemoteQuoting interface {
	Quote(ctx context.Context, req QuoteRequest) (QuoteResponse, error)
	Name() string
}

// QuoteStore persists widget quotes.
type QuoteStore interface {
	SaveWidgetQuote(ctx context.Context, q *WidgetQuote) error
	GetWidgetQuote(ctx context.Context, id string) (*WidgetQuote, error)
}

type Service struct {
	cfg    Config
	remote RemoteQuoting
	store  QuoteStore
	log    *zap.Logger
	clock  func() time.Time
}

type ServiceOption func(*Service)

// WithRemote enables the remote path. Pass nil to keep it disabled.
func WithRemote(r RemoteQuoting) ServiceOption {
	return func(s *Service) { s.remote = r }
}

func WithStore(store QuoteStore) ServiceOption {
	return func(s *Service) { s.store = store }
}

func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithClock(clock func() time.Time) ServiceOption {
	return func(s *Service) { s.clock = clock }
}

func NewService(cfg Config, opts ...ServiceOption) *Service {
	s := &Service{
		cfg:   cfg,
		log:   zap.NewNop(),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RemoteEnabled reports whether quotes are first attempted remotely.
func (s *Service) RemoteEnabled() bool {
	return s.remote != nil
}

// Quote prices req. When a remote quoter is configured it is tried first and
// any failure falls back to CalculateQuote with the service config. Quote
// never fails; the Source says which path answered.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (QuoteResponse, Source) {
	if s.remote == nil {
		metrics.RecordQuote(string(SourceDeterministic))
		return CalculateQuote(req, s.cfg, s.clock()), SourceDeterministic
	}

	start := time.Now()
	resp, err := s.remote.Quote(ctx, req)
	if err == nil {
		metrics.RecordRemoteQuote(s.remote.Name(), time.Since(start), "")
		metrics.RecordQuote(string(SourceRemote))
		return resp, SourceRemote
	}

	reason := remoteFailureReason(err)
	metrics.RecordRemoteQuote(s.remote.Name(), time.Since(start), reason)
	s.log.Warn("remote pricing failed, using fallback",
		zap.String("provider", s.remote.Name()),
		zap.String("reason", reason),
		zap.Error(err),
	)
	metrics.RecordQuote(string(SourceFallback))
	return CalculateQuote(req, s.cfg, s.clock()), SourceFallback
}

// LockPrice computes a price lock. lockDays must already be within [1, 30].
func (s *Service) LockPrice(quotePrice float64, lockDays int) PriceLockResult {
	return CalculatePriceLock(quotePrice, lockDays, s.clock())
}

// Rules returns the active tariff after validating it.
func (s *Service) Rules() (Config, error) {
	if err := s.cfg.Validate(); err != nil {
		return Config{}, err
	}
	return s.cfg, nil
}

// CreateWidgetQuote prices a postcode-to-postcode move with the deterministic
// calculator and stores it.
func (s *Service) CreateWidgetQuote(ctx context.Context, cmd WidgetCommand) (*WidgetQuote, error) {
	volume, ok := WidgetVolume(cmd.MoveSize)
	if !ok {
		return nil, ErrInvalidMoveSize
	}
	if s.store == nil {
		return nil, ErrNoStore
	}

	now := s.clock()
	quote := CalculateQuote(QuoteRequest{
		DistanceKm:        cmd.DistanceKm,
		VolumeCubicMeters: volume,
		ServiceType:       ServiceHouseMove,
		ItemCount:         widgetItemCount,
	}, s.cfg, now)

	wq := &WidgetQuote{
		ID:                uuid.NewString(),
		FromPostcode:      normalizePostcode(cmd.FromPostcode),
		ToPostcode:        normalizePostcode(cmd.ToPostcode),
		MoveSize:          cmd.MoveSize,
		FromAddress:       cmd.From.Address,
		ToAddress:         cmd.To.Address,
		Pickup:            cmd.From.Point,
		Dropoff:           cmd.To.Point,
		PriceGBP:          roundCents(quote.TotalPrice),
		DistanceMiles:     KmToMiles(cmd.DistanceKm),
		EtaMinutes:        quote.EstimatedDurationMinutes,
		VolumeCubicMeters: volume,
		CreatedAt:         now,
	}
	if err := s.store.SaveWidgetQuote(ctx, wq); err != nil {
		return nil, err
	}
	metrics.RecordWidgetQuoteStored()
	s.log.Info("widget quote stored",
		zap.String("quote_id", wq.ID),
		zap.String("move_size", wq.MoveSize),
		zap.Float64("price_gbp", wq.PriceGBP),
	)
	return wq, nil
}

// GetWidgetQuote loads a stored widget quote.
func (s *Service) GetWidgetQuote(ctx context.Context, id string) (*WidgetQuote, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrQuoteNotFound
	}
	return s.store.GetWidgetQuote(ctx, id)
}

func normalizePostcode(p string) string {
	return strings.ToUpper(strings.TrimSpace(p))
}
