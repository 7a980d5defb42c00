package pricing

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"speedyvan/internal/metrics"
)

// fakeGenerator returns a canned reply, an error, or blocks until ctx is done.
type fakeGenerator struct {
	reply  string
	err    error
	block  bool
	prompt string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

func (f *fakeGenerator) Name() string { return "fake" }

const validReply = `{
  "basePrice": 35,
  "distancePrice": 15,
  "volumePrice": 75,
  "subtotal": 125,
  "discount": 0,
  "totalPrice": 130,
  "estimatedDurationMinutes": 95.0,
  "currency": "GBP",
  "validUntil": "2025-03-15T09:30:00Z",
  "breakdown": {"base": 35, "distance": 15, "volume": 75, "serviceMultiplier": 1}
}`

var sampleRequest = QuoteRequest{
	DistanceKm:        10,
	VolumeCubicMeters: 5,
	ServiceType:       ServiceHouseMove,
	ItemCount:         3,
}

func newRemoteService(gen *fakeGenerator, opts ...RemoteOption) *Service {
	clock := func() time.Time { return fixedNow }
	opts = append([]RemoteOption{WithRemoteClock(clock)}, opts...)
	remote := NewRemoteQuoter(gen, DefaultConfig(), opts...)
	return NewService(DefaultConfig(), WithRemote(remote), WithClock(clock))
}

func TestServiceQuote_Deterministic(t *testing.T) {
	svc := NewService(DefaultConfig(), WithClock(func() time.Time { return fixedNow }))
	if svc.RemoteEnabled() {
		t.Fatal("remote should be disabled")
	}
	got, src := svc.Quote(context.Background(), sampleRequest)
	if src != SourceDeterministic {
		t.Errorf("source = %s, want deterministic", src)
	}
	if got.TotalPrice != 125 {
		t.Errorf("total = %v, want 125", got.TotalPrice)
	}
}

func TestServiceQuote_RemoteAccepted(t *testing.T) {
	gen := &fakeGenerator{reply: validReply}
	svc := newRemoteService(gen)

	got, src := svc.Quote(context.Background(), sampleRequest)
	if src != SourceRemote {
		t.Fatalf("source = %s, want remote", src)
	}
	if got.TotalPrice != 130 {
		t.Errorf("total = %v, want 130 from the remote reply", got.TotalPrice)
	}
	if got.EstimatedDurationMinutes != 95 {
		t.Errorf("duration = %d, want 95", got.EstimatedDurationMinutes)
	}
	want := time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC)
	if !got.ValidUntil.Equal(want) {
		t.Errorf("validUntil = %v, want %v", got.ValidUntil, want)
	}
	if !strings.Contains(gen.prompt, "distanceKm: 10") {
		t.Errorf("prompt missing request fields:\n%s", gen.prompt)
	}
}

func TestServiceQuote_RemoteReplyCorrections(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		wantTotal float64
		checkTime func(t *testing.T, v time.Time)
	}{
		{
			name:      "total below minimum is raised",
			reply:     strings.Replace(validReply, `"totalPrice": 130`, `"totalPrice": 10`, 1),
			wantTotal: 60,
		},
		{
			name:      "total rounded to pence",
			reply:     strings.Replace(validReply, `"totalPrice": 130`, `"totalPrice": 130.126`, 1),
			wantTotal: 130.13,
		},
		{
			name:      "unparsable validUntil becomes now plus a day",
			reply:     strings.Replace(validReply, `"2025-03-15T09:30:00Z"`, `"tomorrow"`, 1),
			wantTotal: 130,
			checkTime: func(t *testing.T, v time.Time) {
				if !v.Equal(fixedNow.Add(QuoteValidity)) {
					t.Errorf("validUntil = %v, want %v", v, fixedNow.Add(QuoteValidity))
				}
			},
		},
		{
			name:      "fenced reply",
			reply:     "```json\n" + validReply + "\n```",
			wantTotal: 130,
		},
		{
			name:      "prose and trailing comma",
			reply:     "Here is your quote: " + strings.Replace(validReply, `"serviceMultiplier": 1}`, `"serviceMultiplier": 1,}`, 1) + " Thanks!",
			wantTotal: 130,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newRemoteService(&fakeGenerator{reply: tc.reply})
			got, src := svc.Quote(context.Background(), sampleRequest)
			if src != SourceRemote {
				t.Fatalf("source = %s, want remote", src)
			}
			if got.TotalPrice != tc.wantTotal {
				t.Errorf("total = %v, want %v", got.TotalPrice, tc.wantTotal)
			}
			if got.Currency != "GBP" {
				t.Errorf("currency = %q", got.Currency)
			}
			if tc.checkTime != nil {
				tc.checkTime(t, got.ValidUntil)
			}
		})
	}
}

func TestServiceQuote_FallsBack(t *testing.T) {
	tests := []struct {
		name   string
		gen    *fakeGenerator
		reason string
	}{
		{"transport error", &fakeGenerator{err: errors.New("connection refused")}, "transport"},
		{"not json", &fakeGenerator{reply: "Sorry, I cannot help with that."}, "malformed"},
		{"missing field", &fakeGenerator{reply: strings.Replace(validReply, `"discount": 0,`, "", 1)}, "schema"},
		{"negative price", &fakeGenerator{reply: strings.Replace(validReply, `"volumePrice": 75`, `"volumePrice": -75`, 1)}, "schema"},
		{"wrong currency", &fakeGenerator{reply: strings.Replace(validReply, `"GBP"`, `"EUR"`, 1)}, "schema"},
		{"string where number expected", &fakeGenerator{reply: strings.Replace(validReply, `"subtotal": 125`, `"subtotal": "125"`, 1)}, "schema"},
		{"fractional minutes", &fakeGenerator{reply: strings.Replace(validReply, `"estimatedDurationMinutes": 95.0`, `"estimatedDurationMinutes": 95.4`, 1)}, "schema"},
	}
	want := CalculateQuote(sampleRequest, DefaultConfig(), fixedNow)

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			failures := metrics.RemoteQuoteFailures.WithLabelValues("fake", tc.reason)
			before := testutil.ToFloat64(failures)

			svc := newRemoteService(tc.gen)
			got, src := svc.Quote(context.Background(), sampleRequest)
			if src != SourceFallback {
				t.Fatalf("source = %s, want fallback", src)
			}
			if got != want {
				t.Errorf("fallback quote = %+v, want %+v", got, want)
			}
			if after := testutil.ToFloat64(failures); after != before+1 {
				t.Errorf("%s failures = %v, want %v", tc.reason, after, before+1)
			}
		})
	}
}

func TestServiceQuote_RemoteTimeout(t *testing.T) {
	svc := newRemoteService(&fakeGenerator{block: true}, WithRemoteTimeout(20*time.Millisecond))

	start := time.Now()
	got, src := svc.Quote(context.Background(), sampleRequest)
	if src != SourceFallback {
		t.Fatalf("source = %s, want fallback", src)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("quote took %v; timeout not applied", elapsed)
	}
	if got.TotalPrice != 125 {
		t.Errorf("total = %v, want 125", got.TotalPrice)
	}
}

func TestRemoteQuoter_NilGenerator(t *testing.T) {
	q := NewRemoteQuoter(nil, DefaultConfig())
	if q.Name() != "none" {
		t.Errorf("name = %q", q.Name())
	}
	if _, err := q.Quote(context.Background(), sampleRequest); !errors.Is(err, ErrRemoteUnavailable) {
		t.Errorf("err = %v, want ErrRemoteUnavailable", err)
	}
}

func TestBuildQuotePrompt_RendersConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinPrice = 75
	prompt := buildQuotePrompt(sampleRequest, cfg)
	for _, want := range []string{"£75", "office_move 1.2", "house_move 1", "serviceType: house_move"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestRemoteFailureReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrRemoteUnavailable, "unavailable"},
		{ErrRemoteReply, "malformed"},
		{ErrRemoteSchema, "schema"},
		{context.DeadlineExceeded, "timeout"},
		{errors.New("boom"), "transport"},
	}
	for _, tc := range tests {
		if got := remoteFailureReason(tc.err); got != tc.want {
			t.Errorf("remoteFailureReason(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}

func TestServiceLockPrice(t *testing.T) {
	svc := NewService(DefaultConfig(), WithClock(func() time.Time { return fixedNow }))
	got := svc.LockPrice(500, 3)
	if got.LockFee != 10 || got.LockedPrice != 510 {
		t.Errorf("lock = %+v, want fee 10 locked 510", got)
	}
	if !got.ExpiresAt.Equal(fixedNow.AddDate(0, 0, 3)) {
		t.Errorf("expiresAt = %v", got.ExpiresAt)
	}
}

func TestServiceRules(t *testing.T) {
	if _, err := NewService(DefaultConfig()).Rules(); err != nil {
		t.Fatalf("default rules: %v", err)
	}

	bad := DefaultConfig()
	bad.MinPrice = 0
	if _, err := NewService(bad).Rules(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestServiceWidgetQuote_NoStore(t *testing.T) {
	svc := NewService(DefaultConfig())
	_, err := svc.CreateWidgetQuote(context.Background(), WidgetCommand{MoveSize: MoveSizeSmall})
	if !errors.Is(err, ErrNoStore) {
		t.Errorf("err = %v, want ErrNoStore", err)
	}
	_, err = svc.CreateWidgetQuote(context.Background(), WidgetCommand{MoveSize: "xl"})
	if !errors.Is(err, ErrInvalidMoveSize) {
		t.Errorf("err = %v, want ErrInvalidMoveSize", err)
	}
}

func TestKmToMiles(t *testing.T) {
	tests := []struct{ km, want float64 }{
		{0, 0},
		{1, 0.62},
		{100, 62.14},
		{16.0934, 10},
	}
	for _, tc := range tests {
		if got := KmToMiles(tc.km); got != tc.want {
			t.Errorf("KmToMiles(%v) = %v, want %v", tc.km, got, tc.want)
		}
	}
}
