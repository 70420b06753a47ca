package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/web3-frozen/whirlpool-monitor/internal/metrics"
	"github.com/web3-frozen/whirlpool-monitor/internal/position"
)

// DefaultLimit is the number of most recent records returned per fetch.
const DefaultLimit = 50

// Recorder reads position records from the database.
type Recorder interface {
	RecentSnapshots(ctx context.Context, limit int) ([]position.Snapshot, error)
}

// Cache is a read-through cache for record pages.
type Cache interface {
	Get(ctx context.Context, limit int) ([]position.Snapshot, bool, error)
	Set(ctx context.Context, limit int, snaps []position.Snapshot) error
}

// StoreSource serves the most recent records from the database, optionally
// through a cache.
type StoreSource struct {
	db     Recorder
	cache  Cache
	limit  int
	logger *slog.Logger
}

// StoreOption configures StoreSource.
type StoreOption func(*StoreSource)

// WithCache puts c in front of the database.
func WithCache(c Cache) StoreOption {
	return func(s *StoreSource) {
		s.cache = c
	}
}

// WithLimit sets the page size. Non-positive values keep DefaultLimit.
func WithLimit(n int) StoreOption {
	return func(s *StoreSource) {
		if n > 0 {
			s.limit = n
		}
	}
}

func NewStoreSource(db Recorder, logger *slog.Logger, opts ...StoreOption) *StoreSource {
	s := &StoreSource{
		db:     db,
		limit:  DefaultLimit,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limit returns the page size.
func (s *StoreSource) Limit() int { return s.limit }

// FetchSnapshots returns up to Limit most recent records, ascending by
// timestamp. Cache failures fall through to the database.
func (s *StoreSource) FetchSnapshots(ctx context.Context) ([]position.Snapshot, error) {
	if s.cache != nil {
		snaps, ok, err := s.cache.Get(ctx, s.limit)
		switch {
		case err != nil:
			metrics.CacheRequestsTotal.WithLabelValues("error").Inc()
			s.logger.Warn("record cache read failed", "error", err)
		case ok:
			metrics.CacheRequestsTotal.WithLabelValues("hit").Inc()
			return snaps, nil
		default:
			metrics.CacheRequestsTotal.WithLabelValues("miss").Inc()
		}
	}

	snaps, err := s.db.RecentSnapshots(ctx, s.limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, s.limit, snaps); err != nil {
			s.logger.Warn("record cache write failed", "error", err)
		}
	}
	return snaps, nil
}
