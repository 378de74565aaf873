package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetHistory is one persisted per-asset row. Money columns use fixed
// precision DECIMAL(30,8); all arithmetic upstream runs on decimals at
// matching precision so nothing is truncated on write.
//
// The unique index doubles as the idempotence guard: one snapshot can hold
// the same asset at most once per wallet type.
type AssetHistory struct {
	ID uint64 `gorm:"primaryKey"`

	AccountID   string    `gorm:"type:varchar(64);not null;index:idx_asset_account_time;index:idx_asset_row,unique"`
	CapturedAt  time.Time `gorm:"not null;index:idx_asset_account_time;index:idx_asset_row,unique"`
	Asset       string    `gorm:"type:varchar(20);not null;index:idx_asset_row,unique"`
	Exchange    string    `gorm:"type:varchar(50);not null;index:idx_asset_exchange;index:idx_asset_row,unique"`
	BalanceType string    `gorm:"type:varchar(20);not null;index:idx_asset_row,unique"`

	Free           decimal.Decimal `gorm:"type:decimal(30,8);not null"`
	Locked         decimal.Decimal `gorm:"type:decimal(30,8);not null"`
	Total          decimal.Decimal `gorm:"type:decimal(30,8);not null"`
	UnitPriceUSDT  decimal.Decimal `gorm:"type:decimal(30,8);not null;column:unit_price_usdt"`
	TotalValueUSDT decimal.Decimal `gorm:"type:decimal(30,8);not null;column:total_value_usdt"`
}

// TableName overrides the default table name for GORM.
func (AssetHistory) TableName() string {
	return "asset_history"
}

// TotalHistory is one persisted aggregate row per account and capture time.
// Its unique key serializes duplicate commits for the same snapshot.
type TotalHistory struct {
	ID uint64 `gorm:"primaryKey"`

	AccountID  string    `gorm:"type:varchar(64);not null;index:idx_total_key,unique"`
	CapturedAt time.Time `gorm:"not null;index:idx_total_key,unique"`

	TotalValueUSDT decimal.Decimal `gorm:"type:decimal(30,8);not null;column:total_value_usdt"`
}

// TableName overrides the default table name for GORM.
func (TotalHistory) TableName() string {
	return "total_asset_history"
}
