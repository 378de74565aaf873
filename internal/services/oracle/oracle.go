// Package oracle resolves asset values in USDT against one exchange's live
// price feed, with stable-coin aliasing and routed conversion fallbacks.
package oracle

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/coinfolio/internal/domain"
)

const quoteUSDT = "USDT"

// routeAssets are the intermediate quotes tried when an asset has no direct
// USDT market. Each route costs two price lookups.
var routeAssets = []string{"BTC", "ETH"}

// stableAliases are tickers treated as pegged 1:1 to USDT for valuation.
var stableAliases = map[string]struct{}{
	"USDT":  {},
	"USDC":  {},
	"BUSD":  {},
	"DAI":   {},
	"TUSD":  {},
	"FDUSD": {},
	"USDD":  {},
	"PYUSD": {},
}

// PriceSource is the price capability of an exchange adapter.
type PriceSource interface {
	Name() string
	FetchPrice(ctx context.Context, base, quote string) (decimal.Decimal, error)
}

// Oracle caches resolved prices for the lifetime of one snapshot build, so a
// routed conversion never queries the same market twice in a cycle.
type Oracle struct {
	source PriceSource

	mu    sync.Mutex
	cache map[string]decimal.Decimal
}

// New creates an Oracle backed by the given price source.
func New(source PriceSource) *Oracle {
	return &Oracle{
		source: source,
		cache:  make(map[string]decimal.Decimal),
	}
}

// PriceInUSDT resolves the asset's value in USDT. Resolution order: stable
// alias, direct asset/USDT market, routed asset/BTC/USDT or asset/ETH/USDT.
// When no path resolves it fails with domain.ErrPriceUnavailable instead of
// guessing a value.
func (o *Oracle) PriceInUSDT(ctx context.Context, asset string) (decimal.Decimal, error) {
	asset = domain.NormalizeAsset(asset)
	if _, ok := stableAliases[asset]; ok {
		return decimal.NewFromInt(1), nil
	}
	if price, ok := o.cached(asset); ok {
		return price, nil
	}

	price, err := o.source.FetchPrice(ctx, asset, quoteUSDT)
	if err == nil {
		o.store(asset, price)
		return price, nil
	}
	if hardFailure(err) {
		return decimal.Zero, err
	}

	for _, via := range routeAssets {
		if asset == via {
			continue
		}
		cross, err := o.source.FetchPrice(ctx, asset, via)
		if err != nil {
			if hardFailure(err) {
				return decimal.Zero, err
			}
			continue
		}
		viaUSDT, err := o.quoteInUSDT(ctx, via)
		if err != nil {
			if hardFailure(err) {
				return decimal.Zero, err
			}
			continue
		}
		price := cross.Mul(viaUSDT)
		o.store(asset, price)
		return price, nil
	}

	return decimal.Zero, errors.Wrapf(domain.ErrPriceUnavailable,
		"no USDT conversion path for %s on %s", asset, o.source.Name())
}

// quoteInUSDT resolves the intermediate quote's direct USDT price. It never
// recurses into routed conversion, keeping every resolution bounded to at
// most two lookups.
func (o *Oracle) quoteInUSDT(ctx context.Context, via string) (decimal.Decimal, error) {
	if price, ok := o.cached(via); ok {
		return price, nil
	}
	price, err := o.source.FetchPrice(ctx, via, quoteUSDT)
	if err != nil {
		return decimal.Zero, err
	}
	o.store(via, price)
	return price, nil
}

func (o *Oracle) cached(asset string) (decimal.Decimal, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	price, ok := o.cache[asset]
	return price, ok
}

func (o *Oracle) store(asset string, price decimal.Decimal) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cache[asset] = price
}

// hardFailure reports whether a price lookup error must abort the whole
// resolution instead of falling through to the next conversion path.
func hardFailure(err error) bool {
	return errors.Is(err, domain.ErrAuth) ||
		errors.Is(err, domain.ErrRateLimited) ||
		errors.Is(err, domain.ErrNetwork) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
