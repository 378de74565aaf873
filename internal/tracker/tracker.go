// Package tracker drives collection cycles on a fixed interval.
package tracker

import (
	"context"
	"time"

	"github.com/vadiminshakov/coinfolio/internal/domain"
	"go.uber.org/zap"
)

// CycleRunner executes one full collection cycle across all accounts.
type CycleRunner interface {
	RunCycle(ctx context.Context) domain.CycleSummary
}

// Tracker triggers the collector at the configured interval. Each tick starts
// a fresh cycle with fresh per-account state; there is no re-poll within a
// cycle.
type Tracker struct {
	collector CycleRunner
	interval  time.Duration
	logger    *zap.Logger
}

// New creates a Tracker.
func New(collector CycleRunner, interval time.Duration, logger *zap.Logger) *Tracker {
	return &Tracker{
		collector: collector,
		interval:  interval,
		logger:    logger,
	}
}

// Run executes cycles until the context is cancelled. The first cycle starts
// immediately rather than waiting for the first tick.
func (t *Tracker) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.logger.Info("starting balance tracking loop", zap.Duration("interval", t.interval))
	t.collector.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("context done, stopping balance tracking loop")
			return ctx.Err()
		case <-ticker.C:
			t.collector.RunCycle(ctx)
		}
	}
}
