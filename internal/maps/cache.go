// README: Redis read-through cache in front of a DistanceProvider.
package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"speedyvan/internal/metrics"
	"speedyvan/internal/types"
)

const distanceKeyPrefix = "distance:"

// CachedDistance serves repeated lookups for the same pair of points from redis.
// Cache errors are logged and bypassed.
type CachedDistance struct {
	next DistanceProvider
	rdb  *redis.Client
	ttl  time.Duration
	log  *zap.Logger
}

func NewCachedDistance(next DistanceProvider, rdb *redis.Client, ttl time.Duration, log *zap.Logger) *CachedDistance {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedDistance{next: next, rdb: rdb, ttl: ttl, log: log}
}

func (c *CachedDistance) Distance(ctx context.Context, from, to types.Point) (Estimate, error) {
	key := distanceKey(from, to)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var est Estimate
		if jerr := json.Unmarshal(raw, &est); jerr == nil {
			metrics.RecordDistanceLookup("cache_hit")
			return est, nil
		}
		c.log.Warn("discarding corrupt distance cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.log.Warn("distance cache read failed", zap.String("key", key), zap.Error(err))
	}

	est, err := c.next.Distance(ctx, from, to)
	if err != nil {
		return Estimate{}, err
	}

	payload, err := json.Marshal(est)
	if err == nil {
		if serr := c.rdb.Set(ctx, key, payload, c.ttl).Err(); serr != nil {
			c.log.Warn("distance cache write failed", zap.String("key", key), zap.Error(serr))
		}
	}
	return est, nil
}

// distanceKey rounds to four decimals, roughly 11m.
func distanceKey(from, to types.Point) string {
	return fmt.Sprintf("%s%.4f,%.4f:%.4f,%.4f", distanceKeyPrefix, from.Lat, from.Lng, to.Lat, to.Lng)
}
