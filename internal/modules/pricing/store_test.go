package pricing

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"speedyvan/internal/infra"
	"speedyvan/internal/types"
	"speedyvan/migrations"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("SV_TEST_DSN")
	if dsn == "" {
		t.Skip("SV_TEST_DSN not set; skipping DB-backed store tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := infra.Migrate(ctx, db, migrations.FS); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := db.Exec(ctx, "TRUNCATE TABLE widget_quotes"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
	return NewStore(db)
}

func TestStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	addr := "London SW1A 1AA, UK"
	in := &WidgetQuote{
		ID:                uuid.NewString(),
		FromPostcode:      "SW1A 1AA",
		ToPostcode:        "M1 1AE",
		MoveSize:          MoveSizeLarge,
		FromAddress:       &addr,
		Pickup:            types.Point{Lat: 51.501, Lng: -0.1416},
		Dropoff:           types.Point{Lat: 53.4794, Lng: -2.2453},
		PriceGBP:          892.35,
		DistanceMiles:     208.47,
		EtaMinutes:        1768,
		VolumeCubicMeters: 20,
		CreatedAt:         time.Now().UTC().Truncate(time.Microsecond),
	}
	if err := store.SaveWidgetQuote(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.GetWidgetQuote(ctx, in.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PriceGBP != in.PriceGBP || got.DistanceMiles != in.DistanceMiles {
		t.Errorf("amounts = %v/%v, want %v/%v", got.PriceGBP, got.DistanceMiles, in.PriceGBP, in.DistanceMiles)
	}
	if got.FromAddress == nil || *got.FromAddress != addr {
		t.Errorf("from address = %v", got.FromAddress)
	}
	if got.ToAddress != nil {
		t.Errorf("to address = %v, want nil", *got.ToAddress)
	}
	if !got.CreatedAt.Equal(in.CreatedAt) {
		t.Errorf("created at = %v, want %v", got.CreatedAt, in.CreatedAt)
	}
}

func TestStore_GetMissing(t *testing.T) {
	store := setupTestStore(t)
	_, err := store.GetWidgetQuote(context.Background(), uuid.NewString())
	if !errors.Is(err, ErrQuoteNotFound) {
		t.Errorf("err = %v, want ErrQuoteNotFound", err)
	}
}
