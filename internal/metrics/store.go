// README: Durable per-episode metric storage (§4.11). Grounded on the
// teacher's Store-wraps-*pgxpool.Pool shape
// (internal/modules/pricing.Store / internal/modules/location.Store: a
// thin struct, one method per query, no ORM) — here persisting the raw
// samples an episode emits rather than a rate table.
package metrics

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"deliverysim/internal/types"
)

// EntityKind distinguishes whose metric a sample belongs to (§4.11
// "per-episode, per-driver and per-establishment").
type EntityKind string

const (
	EntityEpisode       EntityKind = "episode"
	EntityDriver        EntityKind = "driver"
	EntityEstablishment EntityKind = "establishment"
)

// Store persists raw metric samples to Postgres and aggregates them back
// out with ComputeStats.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Migrate creates the metric_samples table if it does not already exist.
// Kept here rather than a separate migration tool since the schema is a
// single table with no foreign keys into the rest of the system (an
// episode's metrics outlive the in-memory simulation that produced them).
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
CREATE TABLE IF NOT EXISTS metric_samples (
	episode_id   TEXT NOT NULL,
	entity_kind  TEXT NOT NULL,
	entity_id    TEXT NOT NULL,
	metric_name  TEXT NOT NULL,
	value        DOUBLE PRECISION NOT NULL,
	recorded_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`)
	return err
}

// Record appends one metric sample for an episode/entity/metric-name triple
// (e.g. episode "ep-1", EntityDriver, driver "drv-3", "distance_travelled").
func (s *Store) Record(ctx context.Context, episodeID types.ID, kind EntityKind, entityID types.ID, metricName string, value float64) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO metric_samples (episode_id, entity_kind, entity_id, metric_name, value) VALUES ($1, $2, $3, $4, $5)`,
		string(episodeID), string(kind), string(entityID), metricName, value)
	return err
}

// EpisodeMetrics is the aggregated view returned to the control API's
// GET /api/episodes/:id/metrics handler and to the archive exporter.
type EpisodeMetrics struct {
	EpisodeID      types.ID
	Episode        map[string]Stats
	Drivers        map[types.ID]map[string]Stats
	Establishments map[types.ID]map[string]Stats
}

// Aggregate loads every sample recorded for episodeID and reduces it with
// ComputeStats, grouped by entity and metric name — the Go analogue of
// calculate_stats_generic being applied once per (entity, metric) group.
func (s *Store) Aggregate(ctx context.Context, episodeID types.ID) (EpisodeMetrics, error) {
	rows, err := s.db.Query(ctx,
		`SELECT entity_kind, entity_id, metric_name, value FROM metric_samples WHERE episode_id = $1`,
		string(episodeID))
	if err != nil {
		return EpisodeMetrics{}, err
	}
	defer rows.Close()

	episodeSamples := make(map[string][]float64)
	driverSamples := make(map[types.ID]map[string][]float64)
	estSamples := make(map[types.ID]map[string][]float64)

	for rows.Next() {
		var kind, entityID, metricName string
		var value float64
		if err := rows.Scan(&kind, &entityID, &metricName, &value); err != nil {
			return EpisodeMetrics{}, err
		}
		switch EntityKind(kind) {
		case EntityEpisode:
			episodeSamples[metricName] = append(episodeSamples[metricName], value)
		case EntityDriver:
			id := types.ID(entityID)
			if driverSamples[id] == nil {
				driverSamples[id] = make(map[string][]float64)
			}
			driverSamples[id][metricName] = append(driverSamples[id][metricName], value)
		case EntityEstablishment:
			id := types.ID(entityID)
			if estSamples[id] == nil {
				estSamples[id] = make(map[string][]float64)
			}
			estSamples[id][metricName] = append(estSamples[id][metricName], value)
		}
	}
	if err := rows.Err(); err != nil {
		return EpisodeMetrics{}, err
	}

	result := EpisodeMetrics{
		EpisodeID:      episodeID,
		Episode:        reduceGroup(episodeSamples),
		Drivers:        make(map[types.ID]map[string]Stats, len(driverSamples)),
		Establishments: make(map[types.ID]map[string]Stats, len(estSamples)),
	}
	for id, samples := range driverSamples {
		result.Drivers[id] = reduceGroup(samples)
	}
	for id, samples := range estSamples {
		result.Establishments[id] = reduceGroup(samples)
	}
	return result, nil
}

func reduceGroup(samples map[string][]float64) map[string]Stats {
	out := make(map[string]Stats, len(samples))
	for name, values := range samples {
		out[name] = ComputeStats(values)
	}
	return out
}
