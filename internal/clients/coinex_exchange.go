package clients

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/coinfolio/internal/clients/coinex"
	"github.com/vadiminshakov/coinfolio/internal/domain"
)

// Coinex tracks spot and futures balances of one CoinEx account.
type Coinex struct {
	client *coinex.Client
}

// NewCoinex creates a CoinEx adapter for the given credentials.
func NewCoinex(apiKey, apiSecret string) *Coinex {
	return &Coinex{client: coinex.NewClient(apiKey, apiSecret)}
}

// NewCoinexWithClient wraps an existing CoinEx client. Used by tests.
func NewCoinexWithClient(client *coinex.Client) *Coinex {
	return &Coinex{client: client}
}

func (c *Coinex) Name() string {
	return "coinex"
}

// FetchBalances returns all spot and futures balances with canonical asset
// symbols. Futures margin and unrealized PnL count as locked funds so the
// totals match what the exchange reports as account equity.
func (c *Coinex) FetchBalances(ctx context.Context) ([]domain.AssetBalance, error) {
	spot, err := c.client.SpotBalance(ctx)
	if err != nil {
		return nil, wrapCoinexErr(err, "fetch coinex spot balances")
	}

	var out []domain.AssetBalance
	for _, item := range spot {
		free, err := decimal.NewFromString(item.Available)
		if err != nil {
			return nil, errors.Wrapf(err, "parse coinex available balance for %s", item.Currency)
		}
		locked, err := decimal.NewFromString(item.Frozen)
		if err != nil {
			return nil, errors.Wrapf(err, "parse coinex frozen balance for %s", item.Currency)
		}
		out = append(out, domain.AssetBalance{
			Asset:  domain.NormalizeAsset(item.Currency),
			Type:   domain.BalanceTypeSpot,
			Free:   free,
			Locked: locked,
		})
	}

	futures, err := c.client.FuturesBalance(ctx)
	if err != nil {
		return nil, wrapCoinexErr(err, "fetch coinex futures balances")
	}
	for _, item := range futures {
		free, err := decimal.NewFromString(item.Available)
		if err != nil {
			return nil, errors.Wrapf(err, "parse coinex futures available balance for %s", item.Currency)
		}
		frozen, err := decimal.NewFromString(item.Frozen)
		if err != nil {
			return nil, errors.Wrapf(err, "parse coinex futures frozen balance for %s", item.Currency)
		}
		margin, err := decimal.NewFromString(item.Margin)
		if err != nil {
			return nil, errors.Wrapf(err, "parse coinex futures margin for %s", item.Currency)
		}
		unrealized, err := decimal.NewFromString(item.UnrealizedPNL)
		if err != nil {
			return nil, errors.Wrapf(err, "parse coinex futures unrealized pnl for %s", item.Currency)
		}
		out = append(out, domain.AssetBalance{
			Asset:  domain.NormalizeAsset(item.Currency),
			Type:   domain.BalanceTypeFutures,
			Free:   free,
			Locked: frozen.Add(margin).Add(unrealized),
		})
	}

	return out, nil
}

// FetchPrice returns the last spot price of base quoted in quote.
func (c *Coinex) FetchPrice(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	market := domain.NormalizeAsset(base) + domain.NormalizeAsset(quote)
	items, err := c.client.SpotTicker(ctx, market)
	if err != nil {
		return decimal.Zero, wrapCoinexErr(err, fmt.Sprintf("fetch coinex price for %s", market))
	}
	if len(items) == 0 {
		return decimal.Zero, errors.Wrapf(domain.ErrPriceUnavailable, "coinex returned no ticker for %s", market)
	}
	return decimal.NewFromString(items[0].Last)
}

// wrapCoinexErr maps CoinEx API failures onto the shared error taxonomy.
func wrapCoinexErr(err error, msg string) error {
	var apiErr *coinex.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatus == http.StatusTooManyRequests || apiErr.Code == 4213:
			return errors.Wrapf(domain.ErrRateLimited, "%s: %s", msg, apiErr.Message)
		case apiErr.Code >= 4001 && apiErr.Code <= 4012: // credential and signature error codes
			return errors.Wrapf(domain.ErrAuth, "%s: %s", msg, apiErr.Message)
		default:
			return errors.Wrap(err, msg)
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(err, msg)
	}
	return errors.Wrapf(domain.ErrNetwork, "%s: %v", msg, err)
}
