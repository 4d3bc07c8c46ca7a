// Package sweeper purges expired inventory batches.
package sweeper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/12344321abc/romantic-flowers-app/internal/store"
	"github.com/12344321abc/romantic-flowers-app/prometheus"
)

// Sweeper runs the retention sweep, either once on demand or periodically.
// The sweep is a pure delete-matching-predicate, so running it twice in a
// row deletes nothing the second time.
type Sweeper struct {
	inventory store.InventoryStore
	interval  time.Duration
	log       *zap.Logger
}

// New builds a sweeper. interval only matters for Run.
func New(inventory store.InventoryStore, interval time.Duration, log *zap.Logger) *Sweeper {
	return &Sweeper{
		inventory: inventory,
		interval:  interval,
		log:       log,
	}
}

// SweepOnce deletes expired batches and reports how many were removed.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	deleted, err := s.inventory.SweepExpired(ctx, time.Now().UTC())
	if err != nil {
		s.log.Error("retention sweep failed", zap.Error(err))
		return 0, err
	}
	prometheus.BatchesSweptTotal.Add(float64(deleted))
	if deleted > 0 {
		s.log.Info("retention sweep removed expired batches", zap.Int64("deleted", deleted))
	}
	return deleted, nil
}

// Run sweeps on a ticker until the context is cancelled. Errors are logged
// and the loop keeps going.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("retention sweeper started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("retention sweeper stopped")
			return
		case <-ticker.C:
			_, _ = s.SweepOnce(ctx)
		}
	}
}
