// internal/service/fixture_test.go
package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"family-ledger/internal/cache"
	"family-ledger/internal/domain"
)

// fixture wires every service to one fakeStore.
type fixture struct {
	store      *fakeStore
	currencies CurrencyService
	categories CategoryService
	wallets    WalletService
	ledger     LedgerService
	lines      LineItemService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newFakeStore()
	runner := store.runner(3)
	exec := fakeExec{}

	currencies := NewCurrencyService(exec, runner, store, cache.NewMemoryCurrencyCache())
	return &fixture{
		store:      store,
		currencies: currencies,
		categories: NewCategoryService(exec, runner, store, store),
		wallets:    NewWalletService(exec, runner, store, store, currencies),
		ledger:     NewLedgerService(exec, runner, store, store, store),
		lines:      NewLineItemService(exec, store, store),
	}
}

func (f *fixture) wallet(t *testing.T, ownerID int64, title, opening string) uuid.UUID {
	t.Helper()
	w, err := f.wallets.CreateWallet(context.Background(), ownerID, title, "", decimal.RequireFromString(opening), "")
	require.NoError(t, err)
	return w.ID
}

func (f *fixture) category(t *testing.T, ownerID int64, title string, parent *uuid.UUID) uuid.UUID {
	t.Helper()
	c, err := f.categories.Create(context.Background(), ownerID, title, "", parent)
	require.NoError(t, err)
	return c.ID
}

func (f *fixture) create(t *testing.T, ownerID int64, walletID uuid.UUID, txType domain.TransactionType, amount string) *domain.Transaction {
	t.Helper()
	tx, err := f.ledger.CreateTransaction(context.Background(), CreateTransactionInput{
		OwnerID:  ownerID,
		WalletID: walletID,
		Type:     txType,
		Amount:   decimal.RequireFromString(amount),
	})
	require.NoError(t, err)
	return tx
}

func (f *fixture) update(t *testing.T, tx *domain.Transaction, walletID uuid.UUID, txType domain.TransactionType, amount string) *domain.Transaction {
	t.Helper()
	updated, err := f.ledger.UpdateTransaction(context.Background(), UpdateTransactionInput{
		OwnerID:       tx.OwnerID,
		TransactionID: tx.ID,
		WalletID:      walletID,
		CategoryID:    tx.CategoryID,
		Type:          txType,
		Amount:        decimal.RequireFromString(amount),
		Tax:           tx.Tax,
		Description:   tx.Description,
	})
	require.NoError(t, err)
	return updated
}

func (f *fixture) requireBalance(t *testing.T, walletID uuid.UUID, want string) {
	t.Helper()
	got := f.store.balance(walletID)
	require.True(t, decimal.RequireFromString(want).Equal(got), "balance of %s is %s, want %s", walletID, got, want)
}
