// cmd/ledger-repair/main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	app "family-ledger/internal"
	"family-ledger/internal/domain"
)

// ledger-repair recomputes stored wallet balances from their transactions.
// Without -wallet every wallet is processed. With -check nothing is written
// and the exit status is 2 when any wallet has drifted.
func main() {
	walletFlag := flag.String("wallet", "", "recompute a single wallet by id")
	check := flag.Bool("check", false, "report drift without writing")
	concurrency := flag.Int("concurrency", 4, "wallets processed in parallel")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application := app.NewApplication()
	if err := application.Initialize(ctx); err != nil {
		application.Logger.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	logger := application.Logger
	ledger := application.LedgerService

	var (
		results []domain.BalanceReconciliation
		err     error
	)
	switch {
	case *walletFlag != "":
		walletID, parseErr := uuid.Parse(*walletFlag)
		if parseErr != nil {
			logger.Error("Invalid wallet id", "wallet", *walletFlag, "error", parseErr)
			os.Exit(1)
		}
		var rec *domain.BalanceReconciliation
		if *check {
			rec, err = ledger.CheckWalletBalance(ctx, walletID)
		} else {
			rec, err = ledger.RecomputeWalletBalance(ctx, walletID)
		}
		if rec != nil {
			results = append(results, *rec)
		}
	case *check:
		results, err = checkAll(ctx, application)
	default:
		results, err = ledger.RecomputeAll(ctx, *concurrency)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = application.Shutdown(shutdownCtx)

	if err != nil {
		logger.Error("Ledger repair failed", "error", err)
		os.Exit(1)
	}

	drifted := 0
	for _, rec := range results {
		if rec.Drifted() {
			drifted++
		}
	}
	logger.Info("Ledger repair finished", "wallets", len(results), "drifted", drifted, "repaired", !*check)
	if *check && drifted > 0 {
		os.Exit(2)
	}
}

func checkAll(ctx context.Context, application *app.Application) ([]domain.BalanceReconciliation, error) {
	ids, err := application.WalletRepository.ListWalletIDs(ctx, application.DB)
	if err != nil {
		return nil, err
	}
	results := make([]domain.BalanceReconciliation, 0, len(ids))
	for _, id := range ids {
		rec, err := application.LedgerService.CheckWalletBalance(ctx, id)
		if err != nil {
			return nil, err
		}
		results = append(results, *rec)
	}
	return results, nil
}
