package clients

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/coinfolio/internal/domain"
)

// Exchange is the capability set the collector needs from one configured
// account: balances and prices. Adding an exchange means adding a variant
// behind this interface, never touching the orchestrator.
type Exchange interface {
	Name() string
	FetchBalances(ctx context.Context) ([]domain.AssetBalance, error)
	FetchPrice(ctx context.Context, base, quote string) (decimal.Decimal, error)
}

// New builds the exchange adapter for the configured platform.
func New(exchange, apiKey, apiSecret string) (Exchange, error) {
	switch exchange {
	case "binance":
		return NewBinance(apiKey, apiSecret), nil
	case "coinex":
		return NewCoinex(apiKey, apiSecret), nil
	default:
		return nil, errors.Errorf("unsupported exchange: %s", exchange)
	}
}
