// Package collector orchestrates one polling cycle: concurrent snapshot
// collection across all configured accounts and atomic hand-off to the store.
package collector

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/coinfolio/internal/clients"
	"github.com/vadiminshakov/coinfolio/internal/domain"
	"github.com/vadiminshakov/coinfolio/internal/services/builder"
	"github.com/vadiminshakov/coinfolio/internal/services/oracle"
	"github.com/vadiminshakov/coinfolio/pkg/retrier"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Account couples one configured credential with its exchange adapter.
type Account struct {
	ID       string
	Exchange clients.Exchange
}

// Store persists one snapshot as an atomic unit.
type Store interface {
	Commit(ctx context.Context, snapshot *domain.Snapshot) error
}

// Collector fans a cycle out over all accounts. Accounts share no mutable
// state, so one account's failure never blocks the others.
type Collector struct {
	accounts     []Account
	builder      *builder.Builder
	store        Store
	retrier      *retrier.Retrier
	cycleTimeout time.Duration
	logger       *zap.Logger
}

// New creates a Collector. The retrier decides which exchange failures are
// retried within a cycle; auth failures must not match its predicate.
func New(accounts []Account, b *builder.Builder, store Store, r *retrier.Retrier, cycleTimeout time.Duration, logger *zap.Logger) *Collector {
	return &Collector{
		accounts:     accounts,
		builder:      b,
		store:        store,
		retrier:      r,
		cycleTimeout: cycleTimeout,
		logger:       logger,
	}
}

// RunCycle polls every account concurrently under one cycle deadline and
// commits each successful snapshot. It returns the ordered per-account
// outcomes; an account still fetching at the deadline fails with the context
// error instead of being skipped silently.
func (c *Collector) RunCycle(ctx context.Context) domain.CycleSummary {
	started := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.cycleTimeout)
	defer cancel()

	outcomes := make([]domain.AccountOutcome, len(c.accounts))
	for i := range c.accounts {
		outcomes[i] = domain.AccountOutcome{
			AccountID: c.accounts[i].ID,
			Exchange:  c.accounts[i].Exchange.Name(),
			Status:    domain.StatusPending,
		}
	}

	g := new(errgroup.Group)
	for i, account := range c.accounts {
		i, account := i, account
		g.Go(func() error {
			outcomes[i] = c.collectAccount(ctx, account)
			return nil
		})
	}
	_ = g.Wait()

	summary := domain.CycleSummary{
		StartedAt: started,
		Duration:  time.Since(started),
		Outcomes:  outcomes,
	}
	c.logSummary(summary)
	return summary
}

func (c *Collector) collectAccount(ctx context.Context, account Account) domain.AccountOutcome {
	outcome := domain.AccountOutcome{
		AccountID: account.ID,
		Exchange:  account.Exchange.Name(),
		Status:    domain.StatusFetching,
	}

	snapshot, err := retrier.DoWithData(c.retrier, ctx, func(ctx context.Context) (*domain.Snapshot, error) {
		balances, err := account.Exchange.FetchBalances(ctx)
		if err != nil {
			return nil, err
		}
		// fresh oracle per attempt: prices are cached only within one build
		return c.builder.Build(ctx, account.ID, account.Exchange.Name(), balances, oracle.New(account.Exchange))
	})
	if err != nil {
		outcome.Status = domain.StatusFailed
		outcome.Err = err
		return outcome
	}

	outcome.Excluded = snapshot.Excluded

	// A failed commit is surfaced, never retried: rebuilding would re-stamp
	// the timestamp and masquerade as a different snapshot.
	if err := c.store.Commit(ctx, snapshot); err != nil {
		outcome.Status = domain.StatusFailed
		outcome.Err = errors.Wrap(err, "commit snapshot")
		return outcome
	}

	outcome.Status = domain.StatusSucceeded
	outcome.Assets = len(snapshot.Assets)
	outcome.TotalValueUSDT = snapshot.Total.TotalValueUSDT
	return outcome
}

// logSummary emits the per-cycle operator view: who succeeded, who failed and
// why, and which assets went unpriced.
func (c *Collector) logSummary(summary domain.CycleSummary) {
	c.logger.Info("collection cycle finished",
		zap.Duration("duration", summary.Duration),
		zap.Int("accounts", len(summary.Outcomes)),
		zap.Int("succeeded", summary.Succeeded()),
		zap.Int("failed", summary.Failed()),
		zap.Int("excluded_assets", summary.ExcludedAssets()))

	for _, outcome := range summary.Outcomes {
		switch outcome.Status {
		case domain.StatusSucceeded:
			c.logger.Info("account snapshot committed",
				zap.String("account", outcome.AccountID),
				zap.String("exchange", outcome.Exchange),
				zap.Int("assets", outcome.Assets),
				zap.String("total_usdt", outcome.TotalValueUSDT.StringFixed(8)))
		case domain.StatusFailed:
			c.logger.Error("account snapshot failed",
				zap.String("account", outcome.AccountID),
				zap.String("exchange", outcome.Exchange),
				zap.Error(outcome.Err))
		}
		for _, excluded := range outcome.Excluded {
			c.logger.Warn("asset excluded for price reasons",
				zap.String("account", outcome.AccountID),
				zap.String("exchange", excluded.Exchange),
				zap.String("asset", excluded.Asset))
		}
	}
}
