// README: Nearest-driver lookup cache backed by Redis GEO. Grounded
// directly on the teacher's matching/store.go (GeoAdd/GeoSearch against a
// single sorted-set key) — the dispatch/broadcast bookkeeping keys are
// dropped since this domain's core-event hand-off already tracks dispatch
// state on the Order itself, but the GEO indexing idiom carries over
// verbatim, with grid X/Y substituted for real longitude/latitude.
package matching

import (
	"context"

	"github.com/redis/go-redis/v9"

	"deliverysim/internal/types"
)

const driverGeoKey = "deliverysim:drivers"

// Store is optional: when nil, NearestSelector falls back to an
// in-memory linear scan (see selectors.go), so a single-process
// evaluation run never needs a live Redis instance.
type Store struct {
	redis *redis.Client
}

func NewStore(redis *redis.Client) *Store {
	return &Store{redis: redis}
}

func (s *Store) UpdatePosition(ctx context.Context, id types.ID, p types.Point) error {
	return s.redis.GeoAdd(ctx, driverGeoKey, &redis.GeoLocation{
		Name:      string(id),
		Longitude: float64(p.X),
		Latitude:  float64(p.Y),
	}).Err()
}

func (s *Store) RemoveDriver(ctx context.Context, id types.ID) error {
	return s.redis.ZRem(ctx, driverGeoKey, string(id)).Err()
}

// NearestTo returns driver ids within radius kilometres of p, nearest
// first by Redis's great-circle distance. Grid X/Y are stored as degrees,
// so a radius of the map's MaxDistance in km covers only a small area
// around p; an empty result makes NearestSelector fall back to its scan.
func (s *Store) NearestTo(ctx context.Context, p types.Point, radius float64) ([]types.ID, error) {
	results, err := s.redis.GeoSearch(ctx, driverGeoKey, &redis.GeoSearchQuery{
		Longitude:  float64(p.X),
		Latitude:   float64(p.Y),
		Radius:     radius,
		RadiusUnit: "km",
		Sort:       "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]types.ID, len(results))
	for i, r := range results {
		ids[i] = types.ID(r)
	}
	return ids, nil
}
