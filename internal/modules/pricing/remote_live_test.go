package pricing

import (
	"context"
	"os"
	"testing"
	"time"

	"speedyvan/internal/ai"
	"speedyvan/internal/config"
)

// TestRemoteQuoter_Live calls the configured provider. It only runs when
// SV_LIVE_AI=1 and the provider key is present.
func TestRemoteQuoter_Live(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if os.Getenv("SV_LIVE_AI") != "1" || cfg.AI.RemoteKey() == "" {
		t.Skip("SV_LIVE_AI not enabled or provider key missing; skipping live remote quote")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	gen, closeGen, err := ai.NewGenerator(ctx, cfg.AI)
	if err != nil {
		t.Fatalf("generator: %v", err)
	}
	defer closeGen()

	q := NewRemoteQuoter(gen, DefaultConfig(), WithRemoteTimeout(30*time.Second))
	got, err := q.Quote(ctx, QuoteRequest{
		DistanceKm:        18,
		VolumeCubicMeters: 12,
		ServiceType:       ServiceOfficeMove,
		ItemCount:         20,
		PickupFloorNumber: 2,
	})
	if err != nil {
		t.Fatalf("remote quote via %s: %v", q.Name(), err)
	}
	if got.TotalPrice < DefaultConfig().MinPrice {
		t.Errorf("total %v below minimum", got.TotalPrice)
	}
	if got.Currency != "GBP" {
		t.Errorf("currency = %q", got.Currency)
	}
	if got.ValidUntil.IsZero() {
		t.Error("validUntil not set")
	}
	t.Logf("%s quoted £%.2f (%d min)", q.Name(), got.TotalPrice, got.EstimatedDurationMinutes)
}
