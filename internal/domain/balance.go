package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// BalanceType tags which exchange wallet a balance came from.
type BalanceType string

const (
	BalanceTypeSpot    BalanceType = "spot"
	BalanceTypeFutures BalanceType = "futures"
)

// AssetBalance is a raw, exchange-native balance. It lives only for the
// duration of one poll: adapters produce it, the snapshot builder consumes it.
type AssetBalance struct {
	Asset  string
	Type   BalanceType
	Free   decimal.Decimal
	Locked decimal.Decimal
}

// Total returns the full held amount, free plus locked.
func (b AssetBalance) Total() decimal.Decimal {
	return b.Free.Add(b.Locked)
}

// NormalizeAsset converts an exchange-specific ticker to the canonical
// uppercase form ("usdt" and "USDT" must key the same price).
func NormalizeAsset(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
