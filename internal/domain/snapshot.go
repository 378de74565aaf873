package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetRecord is one normalized per-asset row of a snapshot. Records are
// append-only history: once written they are never updated or deleted.
type AssetRecord struct {
	AccountID      string
	CapturedAt     time.Time
	Asset          string
	Exchange       string
	Type           BalanceType
	Free           decimal.Decimal
	Locked         decimal.Decimal
	Total          decimal.Decimal
	UnitPriceUSDT  decimal.Decimal
	TotalValueUSDT decimal.Decimal
}

// TotalRecord aggregates one account at one capture time. Its value must
// equal the sum of TotalValueUSDT over the asset records sharing the same
// (AccountID, CapturedAt).
type TotalRecord struct {
	AccountID      string
	CapturedAt     time.Time
	TotalValueUSDT decimal.Decimal
}

// ExcludedAsset marks an asset left out of a snapshot because no price path
// resolved. Exclusions are surfaced in the cycle summary, never dropped
// silently.
type ExcludedAsset struct {
	Asset    string
	Exchange string
	Reason   string
}

// Snapshot is the complete record set produced for one account at one poll
// timestamp. CapturedAt is stamped once at build time and shared verbatim by
// every row; a snapshot is never mutated after creation.
type Snapshot struct {
	AccountID  string
	CapturedAt time.Time
	Assets     []AssetRecord
	Total      TotalRecord
	Excluded   []ExcludedAsset
}
