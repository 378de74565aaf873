package domain

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeAsset(t *testing.T) {
	assert.Equal(t, "USDT", NormalizeAsset("usdt"))
	assert.Equal(t, "USDT", NormalizeAsset("USDT"))
	assert.Equal(t, "BTC", NormalizeAsset(" btc "))
}

func TestAssetBalanceTotal(t *testing.T) {
	balance := AssetBalance{
		Asset:  "BTC",
		Free:   decimal.RequireFromString("0.5"),
		Locked: decimal.RequireFromString("0.1"),
	}
	assert.True(t, balance.Total().Equal(decimal.RequireFromString("0.6")))
}

func TestTransient(t *testing.T) {
	assert.True(t, Transient(ErrNetwork))
	assert.True(t, Transient(ErrRateLimited))
	assert.True(t, Transient(errors.Wrap(ErrRateLimited, "fetch balances")))
	assert.False(t, Transient(ErrAuth))
	assert.False(t, Transient(ErrPriceUnavailable))
	assert.False(t, Transient(context.DeadlineExceeded))
}

func TestCycleSummaryCounts(t *testing.T) {
	summary := CycleSummary{
		Outcomes: []AccountOutcome{
			{Status: StatusSucceeded, Excluded: []ExcludedAsset{{Asset: "SHIB"}}},
			{Status: StatusFailed, Err: ErrAuth},
			{Status: StatusSucceeded},
		},
	}
	assert.Equal(t, 2, summary.Succeeded())
	assert.Equal(t, 1, summary.Failed())
	assert.Equal(t, 1, summary.ExcludedAssets())
}
