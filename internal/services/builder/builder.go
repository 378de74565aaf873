// Package builder turns raw exchange balances into normalized, internally
// consistent snapshots ready for atomic persistence.
package builder

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/coinfolio/internal/domain"
	"go.uber.org/zap"
)

// PriceOracle resolves an asset's value in USDT.
type PriceOracle interface {
	PriceInUSDT(ctx context.Context, asset string) (decimal.Decimal, error)
}

// Builder produces snapshots for one account at one point in time.
type Builder struct {
	skipZero bool
	logger   *zap.Logger
}

// New creates a Builder. With skipZero set, zero-total balances are dropped
// instead of recorded.
func New(skipZero bool, logger *zap.Logger) *Builder {
	return &Builder{skipZero: skipZero, logger: logger}
}

// Build values every balance via the oracle and assembles the snapshot.
// An asset whose price cannot be resolved is excluded and surfaced in
// Snapshot.Excluded rather than aborting the account; the build fails with
// domain.ErrPriceUnavailable only when not a single balance is resolvable.
// The capture timestamp is stamped exactly once and shared by every record.
func (b *Builder) Build(ctx context.Context, accountID, exchange string, balances []domain.AssetBalance, oracle PriceOracle) (*domain.Snapshot, error) {
	capturedAt := time.Now().UTC().Truncate(time.Second)

	snapshot := &domain.Snapshot{
		AccountID:  accountID,
		CapturedAt: capturedAt,
	}

	sum := decimal.Zero
	for _, balance := range balances {
		total := balance.Total()
		if b.skipZero && total.IsZero() {
			continue
		}

		price, err := oracle.PriceInUSDT(ctx, balance.Asset)
		if err != nil {
			if !errors.Is(err, domain.ErrPriceUnavailable) {
				return nil, err
			}
			snapshot.Excluded = append(snapshot.Excluded, domain.ExcludedAsset{
				Asset:    balance.Asset,
				Exchange: exchange,
				Reason:   err.Error(),
			})
			b.logger.Warn("asset excluded from snapshot, no price path",
				zap.String("account", accountID),
				zap.String("exchange", exchange),
				zap.String("asset", balance.Asset))
			continue
		}

		value := total.Mul(price)
		snapshot.Assets = append(snapshot.Assets, domain.AssetRecord{
			AccountID:      accountID,
			CapturedAt:     capturedAt,
			Asset:          balance.Asset,
			Exchange:       exchange,
			Type:           balance.Type,
			Free:           balance.Free,
			Locked:         balance.Locked,
			Total:          total,
			UnitPriceUSDT:  price,
			TotalValueUSDT: value,
		})
		sum = sum.Add(value)
	}

	if len(snapshot.Assets) == 0 && len(balances) > 0 {
		return nil, errors.Wrapf(domain.ErrPriceUnavailable,
			"no priceable assets for account %s on %s", accountID, exchange)
	}

	snapshot.Total = domain.TotalRecord{
		AccountID:      accountID,
		CapturedAt:     capturedAt,
		TotalValueUSDT: sum,
	}
	return snapshot, nil
}
