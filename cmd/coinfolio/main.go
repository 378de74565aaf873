// Command coinfolio periodically snapshots asset balances across configured
// exchange accounts, values every holding in USDT and appends per-asset and
// per-account aggregate rows to a relational history store.
//
// Usage:
//
//	coinfolio --config config.yaml
//
// Credentials live in the config file or in environment overrides; the
// supported exchanges are Binance and CoinEx, the supported database
// connectors are postgres, mysql and sqlite.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/coinfolio/config"
	"github.com/vadiminshakov/coinfolio/internal/clients"
	"github.com/vadiminshakov/coinfolio/internal/domain"
	"github.com/vadiminshakov/coinfolio/internal/services/builder"
	"github.com/vadiminshakov/coinfolio/internal/services/collector"
	"github.com/vadiminshakov/coinfolio/internal/storage"
	"github.com/vadiminshakov/coinfolio/internal/tracker"
	"github.com/vadiminshakov/coinfolio/logger"
	"github.com/vadiminshakov/coinfolio/pkg/retrier"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to yaml config")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	zlog, err := logger.New(conf.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer zlog.Sync()

	store, err := storage.Open(conf.Database)
	if err != nil {
		zlog.Fatal("failed to open store", zap.Error(err))
	}
	defer store.Close()

	accounts := make([]collector.Account, 0, len(conf.Accounts))
	for _, account := range conf.Accounts {
		exchange, err := clients.New(account.Exchange, account.APIKey, account.APISecret)
		if err != nil {
			zlog.Fatal("failed to create exchange client",
				zap.String("account", account.ID), zap.Error(err))
		}
		accounts = append(accounts, collector.Account{ID: account.ID, Exchange: exchange})
	}

	col := collector.New(
		accounts,
		builder.New(conf.SkipZeroBalances, zlog),
		store,
		retrier.New(
			retrier.WithMaxRetries(conf.Schedule.MaxRetries),
			retrier.WithInitialInterval(conf.Schedule.InitialBackoff),
			retrier.WithRetryIf(domain.Transient),
		),
		conf.Schedule.CycleTimeout,
		zlog,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	trk := tracker.New(col, conf.Schedule.Interval, zlog)
	if err := trk.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		zlog.Fatal("tracker stopped", zap.Error(err))
	}
}
