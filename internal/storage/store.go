// Package storage persists balance snapshots to a relational backend. A
// snapshot's asset rows and aggregate row are written as one transaction:
// readers observe either the whole snapshot or none of it.
package storage

import (
	"context"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/coinfolio/config"
	"github.com/vadiminshakov/coinfolio/internal/domain"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Store owns the durable schema and the atomic commit path.
type Store struct {
	db *gorm.DB
}

// Open connects to the configured backend and migrates the history tables.
func Open(conf config.Database) (*Store, error) {
	var dialector gorm.Dialector
	switch conf.Connector {
	case "postgres":
		dialector = postgres.Open(conf.DSN())
	case "mysql":
		dialector = mysql.Open(conf.DSN())
	case "sqlite":
		dialector = sqlite.Open(conf.DSN())
	default:
		return nil, errors.Errorf("unsupported database connector: %s", conf.Connector)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "connect to %s", conf.Connector)
	}

	return New(db)
}

// New wraps an existing gorm handle and runs migrations.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&AssetHistory{}, &TotalHistory{}); err != nil {
		return nil, errors.Wrap(err, "migrate history tables")
	}
	return &Store{db: db}, nil
}

// Commit writes the snapshot's aggregate row and asset rows in a single
// transaction. The aggregate row is inserted first with a do-nothing conflict
// clause on its (account_id, captured_at) key: a duplicate snapshot rolls the
// whole transaction back with domain.ErrDuplicateSnapshot, so resubmission
// can never produce divergent totals for the same key.
func (s *Store) Commit(ctx context.Context, snapshot *domain.Snapshot) error {
	total := TotalHistory{
		AccountID:      snapshot.AccountID,
		CapturedAt:     snapshot.CapturedAt,
		TotalValueUSDT: snapshot.Total.TotalValueUSDT,
	}

	rows := make([]AssetHistory, 0, len(snapshot.Assets))
	for _, record := range snapshot.Assets {
		totalAmount := record.Free.Add(record.Locked)
		rows = append(rows, AssetHistory{
			AccountID:   record.AccountID,
			CapturedAt:  record.CapturedAt,
			Asset:       record.Asset,
			Exchange:    record.Exchange,
			BalanceType: string(record.Type),
			Free:        record.Free,
			Locked:      record.Locked,
			Total:       totalAmount,
			// value is always recomputed from amount and unit price at write
			// time, never taken on faith from the caller
			UnitPriceUSDT:  record.UnitPriceUSDT,
			TotalValueUSDT: totalAmount.Mul(record.UnitPriceUSDT),
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "account_id"},
				{Name: "captured_at"},
			},
			DoNothing: true,
		}).Create(&total)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrDuplicateSnapshot
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateSnapshot) {
			return errors.Wrapf(err, "account %s at %s",
				snapshot.AccountID, snapshot.CapturedAt.Format(time.RFC3339))
		}
		return errors.Wrapf(err, "commit snapshot for account %s at %s",
			snapshot.AccountID, snapshot.CapturedAt.Format(time.RFC3339))
	}
	return nil
}

// LatestTotal returns the most recent aggregate row for the account.
func (s *Store) LatestTotal(ctx context.Context, accountID string) (*TotalHistory, error) {
	var total TotalHistory
	err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("captured_at DESC").
		First(&total).Error
	if err != nil {
		return nil, errors.Wrapf(err, "latest total for account %s", accountID)
	}
	return &total, nil
}

// AssetsAt returns every asset row of one snapshot.
func (s *Store) AssetsAt(ctx context.Context, accountID string, capturedAt time.Time) ([]AssetHistory, error) {
	var rows []AssetHistory
	err := s.db.WithContext(ctx).
		Where("account_id = ? AND captured_at = ?", accountID, capturedAt).
		Order("exchange, asset, balance_type").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrapf(err, "asset rows for account %s", accountID)
	}
	return rows, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "retrieve raw DB handle")
	}
	return db.Close()
}
