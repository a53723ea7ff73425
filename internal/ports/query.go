package ports

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/quentinrf/sensor-data-pipeline/internal/domain"
)

// QueryService reads the curated timeline for a date range
type QueryService struct {
	store domain.ReadingStore
	cache domain.ResultCache
}

// NewQueryService creates a query service. cache may be nil.
func NewQueryService(store domain.ReadingStore, cache domain.ResultCache) *QueryService {
	return &QueryService{store: store, cache: cache}
}

// Query resolves from/to into a date range and returns the curated rows in
// it, ordered by time then metric name. The result is never nil.
func (s *QueryService) Query(ctx context.Context, from, to string) ([]domain.ReadingRow, error) {
	dr, err := domain.ResolveRange(from, to)
	if err != nil {
		log.Debug().Err(err).Str("from", from).Str("to", to).Msg("rejected range")
		return nil, err
	}

	if s.cache != nil {
		if rows, ok := s.cache.Get(ctx, dr); ok {
			log.Debug().Stringer("range", dr).Int("rows", len(rows)).Msg("range served from cache")
			return rows, nil
		}
	}

	rows, err := s.store.ReadingsInRange(ctx, dr)
	if err != nil {
		log.Error().Err(err).Stringer("range", dr).Msg("failed to query readings")
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	if rows == nil {
		rows = []domain.ReadingRow{}
	}

	if s.cache != nil {
		s.cache.Put(ctx, dr, rows)
	}
	return rows, nil
}
