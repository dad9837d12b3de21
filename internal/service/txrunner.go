// internal/service/txrunner.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"family-ledger/internal/repository"
	"family-ledger/internal/util"
	"family-ledger/pkg/db"
)

const defaultRetryBackoff = 20 * time.Millisecond

// TxRunner runs a unit of work inside one database transaction and replays
// it when PostgreSQL aborts it with a serialization failure or deadlock.
type TxRunner struct {
	dbBeginner  db.DBTxBeginner   // For starting transactions (e.g., *sqlx.DB)
	beginTx     db.BeginTxFunc    // Injected dependency for beginning transactions
	commitTx    db.CommitTxFunc   // Injected dependency for committing transactions
	rollbackTx  db.RollbackTxFunc // Injected dependency for rolling back transactions
	maxAttempts int
	backoff     time.Duration
	logger      *slog.Logger
}

// NewTxRunner creates a TxRunner that tries each unit of work at most maxAttempts times.
func NewTxRunner(
	dbBeginner db.DBTxBeginner,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
	maxAttempts int,
) *TxRunner {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &TxRunner{
		dbBeginner:  dbBeginner,
		beginTx:     beginTx,
		commitTx:    commitTx,
		rollbackTx:  rollbackTx,
		maxAttempts: maxAttempts,
		backoff:     defaultRetryBackoff,
		logger:      util.ComponentLogger("tx"),
	}
}

// Run executes fn inside a transaction named op. fn may be called more than
// once, so it must not leak state between attempts.
func (r *TxRunner) Run(ctx context.Context, op string, fn func(q repository.DBExecutor) error) error {
	var err error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err = r.runOnce(ctx, op, fn)
		if err == nil || !db.IsRetryable(err) {
			return err
		}
		if attempt == r.maxAttempts {
			break
		}
		r.logger.Warn("Retrying conflicting transaction", "op", op, "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(r.backoff * time.Duration(attempt)):
		}
	}
	r.logger.Error("Giving up on conflicting transaction", "op", op, "attempts", r.maxAttempts, "error", err)
	return fmt.Errorf("%s: %w: %v", op, util.ErrConcurrencyConflict, err)
}

func (r *TxRunner) runOnce(ctx context.Context, op string, fn func(q repository.DBExecutor) error) error {
	txController, err := r.beginTx(ctx, r.dbBeginner)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer r.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("%s: transaction controller does not implement DBExecutor", op)
	}

	if err := fn(txExecutor); err != nil {
		return err
	}

	if err := r.commitTx(txController); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	return nil
}
