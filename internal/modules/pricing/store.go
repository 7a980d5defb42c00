// README: Widget quote store backed by PostgreSQL.
package pricing

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) SaveWidgetQuote(ctx context.Context, q *WidgetQuote) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO widget_quotes (
			id, from_postcode, to_postcode, move_size,
			from_address, to_address,
			pickup_lat, pickup_lng, dropoff_lat, dropoff_lng,
			price_gbp, distance_miles, eta_minutes, volume_cubic_meters, created_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6,
			$7, $8, $9, $10,
			$11, $12, $13, $14, $15
		)`,
		q.ID, q.FromPostcode, q.ToPostcode, q.MoveSize,
		q.FromAddress, q.ToAddress,
		q.Pickup.Lat, q.Pickup.Lng, q.Dropoff.Lat, q.Dropoff.Lng,
		q.PriceGBP, q.DistanceMiles, q.EtaMinutes, q.VolumeCubicMeters, q.CreatedAt,
	)
	return err
}

func (s *Store) GetWidgetQuote(ctx context.Context, id string) (*WidgetQuote, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id::text, from_postcode, to_postcode, move_size,
		       from_address, to_address,
		       pickup_lat, pickup_lng, dropoff_lat, dropoff_lng,
		       price_gbp::float8, distance_miles::float8, eta_minutes, volume_cubic_meters, created_at
		FROM widget_quotes
		WHERE id = $1`, id,
	)

	var q WidgetQuote
	var fromAddr, toAddr sql.NullString
	err := row.Scan(
		&q.ID, &q.FromPostcode, &q.ToPostcode, &q.MoveSize,
		&fromAddr, &toAddr,
		&q.Pickup.Lat, &q.Pickup.Lng, &q.Dropoff.Lat, &q.Dropoff.Lng,
		&q.PriceGBP, &q.DistanceMiles, &q.EtaMinutes, &q.VolumeCubicMeters, &q.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrQuoteNotFound
	}
	if err != nil {
		return nil, err
	}
	if fromAddr.Valid {
		q.FromAddress = &fromAddr.String
	}
	if toAddr.Valid {
		q.ToAddress = &toAddr.String
	}
	return &q, nil
}
