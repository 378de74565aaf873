package clients

import (
	"context"
	"fmt"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/coinfolio/internal/domain"
)

// Binance tracks spot and USD-M futures balances of one Binance account.
type Binance struct {
	spot    *binance.Client
	futures *futures.Client
}

// NewBinance creates a Binance adapter for the given credentials.
func NewBinance(apiKey, apiSecret string) *Binance {
	return &Binance{
		spot:    binance.NewClient(apiKey, apiSecret),
		futures: binance.NewFuturesClient(apiKey, apiSecret),
	}
}

func (b *Binance) Name() string {
	return "binance"
}

// FetchBalances returns all non-empty spot and futures balances with
// canonical asset symbols.
func (b *Binance) FetchBalances(ctx context.Context) ([]domain.AssetBalance, error) {
	account, err := b.spot.NewGetAccountService().Do(ctx)
	if err != nil {
		return nil, wrapBinanceErr(err, "fetch binance spot balances")
	}

	var out []domain.AssetBalance
	for _, bal := range account.Balances {
		free, err := decimal.NewFromString(bal.Free)
		if err != nil {
			return nil, errors.Wrapf(err, "parse binance free balance for %s", bal.Asset)
		}
		locked, err := decimal.NewFromString(bal.Locked)
		if err != nil {
			return nil, errors.Wrapf(err, "parse binance locked balance for %s", bal.Asset)
		}
		if free.IsZero() && locked.IsZero() {
			continue
		}
		out = append(out, domain.AssetBalance{
			Asset:  domain.NormalizeAsset(bal.Asset),
			Type:   domain.BalanceTypeSpot,
			Free:   free,
			Locked: locked,
		})
	}

	futuresBalances, err := b.futures.NewGetBalanceService().Do(ctx)
	if err != nil {
		return nil, wrapBinanceErr(err, "fetch binance futures balances")
	}
	for _, bal := range futuresBalances {
		total, err := decimal.NewFromString(bal.Balance)
		if err != nil {
			return nil, errors.Wrapf(err, "parse binance futures balance for %s", bal.Asset)
		}
		if total.IsZero() {
			continue
		}
		free, err := decimal.NewFromString(bal.AvailableBalance)
		if err != nil {
			return nil, errors.Wrapf(err, "parse binance futures available balance for %s", bal.Asset)
		}
		out = append(out, domain.AssetBalance{
			Asset:  domain.NormalizeAsset(bal.Asset),
			Type:   domain.BalanceTypeFutures,
			Free:   free,
			Locked: total.Sub(free),
		})
	}

	return out, nil
}

// FetchPrice returns the last spot price of base quoted in quote.
func (b *Binance) FetchPrice(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	symbol := domain.NormalizeAsset(base) + domain.NormalizeAsset(quote)
	prices, err := b.spot.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return decimal.Zero, wrapBinanceErr(err, fmt.Sprintf("fetch binance price for %s", symbol))
	}
	if len(prices) == 0 {
		return decimal.Zero, errors.Wrapf(domain.ErrPriceUnavailable, "binance returned no price for %s", symbol)
	}
	return decimal.NewFromString(prices[0].Price)
}

// wrapBinanceErr maps Binance API failures onto the shared error taxonomy so
// the collector can pick a retry policy. The error message never carries
// credentials, only the API response text.
func wrapBinanceErr(err error, msg string) error {
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case -1003, -1015: // too many requests / too many orders
			return errors.Wrapf(domain.ErrRateLimited, "%s: %s", msg, apiErr.Message)
		case -1002, -1022, -2014, -2015: // unauthorized, bad signature, bad key
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
