// internal/service/fake_store_test.go
package service

import (
	"context"
	"database/sql"
	"errors"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"family-ledger/internal/domain"
	"family-ledger/internal/repository"
	"family-ledger/internal/util"
	"family-ledger/pkg/db"
)

// fakeStore is an in-memory implementation of every repository. A
// transaction holds the store lock from begin to rollback and restores a
// snapshot unless it was committed, so it behaves like a serializable
// database with working rollbacks.
type fakeStore struct {
	mu    sync.Mutex
	state fakeState

	// failAdjust makes that many AdjustBalance calls fail with a
	// serialization failure.
	failAdjust int
}

type fakeState struct {
	currencies   map[uuid.UUID]domain.Currency
	categories   map[uuid.UUID]domain.Category
	wallets      map[uuid.UUID]domain.Wallet
	transactions map[uuid.UUID]domain.Transaction
	lineItems    map[uuid.UUID]domain.LineItem
}

func newFakeStore() *fakeStore {
	return &fakeStore{state: fakeState{
		currencies:   map[uuid.UUID]domain.Currency{},
		categories:   map[uuid.UUID]domain.Category{},
		wallets:      map[uuid.UUID]domain.Wallet{},
		transactions: map[uuid.UUID]domain.Transaction{},
		lineItems:    map[uuid.UUID]domain.LineItem{},
	}}
}

func (s fakeState) clone() fakeState {
	return fakeState{
		currencies:   maps.Clone(s.currencies),
		categories:   maps.Clone(s.categories),
		wallets:      maps.Clone(s.wallets),
		transactions: maps.Clone(s.transactions),
		lineItems:    maps.Clone(s.lineItems),
	}
}

// fakeExec satisfies repository.DBExecutor; the fake repositories never run SQL.
type fakeExec struct{}

var errNoSQL = errors.New("fake store does not run SQL")

func (fakeExec) GetContext(context.Context, interface{}, string, ...interface{}) error {
	return errNoSQL
}

func (fakeExec) SelectContext(context.Context, interface{}, string, ...interface{}) error {
	return errNoSQL
}

func (fakeExec) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, errNoSQL
}

func (fakeExec) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return &sql.Row{}
}

type fakeTx struct {
	fakeExec
	store     *fakeStore
	snapshot  fakeState
	committed bool
	done      bool
}

func (tx *fakeTx) Commit() error {
	if tx.done {
		return sql.ErrTxDone
	}
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback() error {
	if tx.done {
		return sql.ErrTxDone
	}
	tx.done = true
	if !tx.committed {
		tx.store.state = tx.snapshot
	}
	tx.store.mu.Unlock()
	return nil
}

func (f *fakeStore) runner(maxAttempts int) *TxRunner {
	r := NewTxRunner(nil,
		func(ctx context.Context, _ db.DBTxBeginner) (db.TxController, error) {
			f.mu.Lock()
			return &fakeTx{store: f, snapshot: f.state.clone()}, nil
		},
		func(tx db.TxController) error { return tx.Commit() },
		func(tx db.TxController) { _ = tx.Rollback() },
		maxAttempts,
	)
	r.backoff = time.Millisecond
	return r
}

// with runs fn against the state, taking the store lock unless q is a
// transaction that already holds it.
func (f *fakeStore) with(q repository.DBExecutor, fn func(st *fakeState) error) error {
	if _, inTx := q.(*fakeTx); !inTx {
		f.mu.Lock()
		defer f.mu.Unlock()
	}
	return fn(&f.state)
}

func (f *fakeStore) balance(id uuid.UUID) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.wallets[id].Balance
}

func (f *fakeStore) count(pick func(st *fakeState) int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return pick(&f.state)
}

// Currencies

func (f *fakeStore) CreateIfAbsent(_ context.Context, q repository.DBExecutor, c *domain.Currency) (bool, error) {
	inserted := false
	err := f.with(q, func(st *fakeState) error {
		for _, existing := range st.currencies {
			if existing.NumericCode == c.NumericCode || existing.AlphaCode == c.AlphaCode {
				return nil
			}
		}
		st.currencies[c.ID] = *c
		inserted = true
		return nil
	})
	return inserted, err
}

func (f *fakeStore) findCurrency(q repository.DBExecutor, match func(domain.Currency) bool) (*domain.Currency, error) {
	var found *domain.Currency
	err := f.with(q, func(st *fakeState) error {
		for _, c := range st.currencies {
			if match(c) {
				found = &c
				return nil
			}
		}
		return util.ErrCurrencyNotFound
	})
	return found, err
}

func (f *fakeStore) GetCurrencyByID(_ context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Currency, error) {
	return f.findCurrency(q, func(c domain.Currency) bool { return c.ID == id })
}

func (f *fakeStore) GetByNumericCode(_ context.Context, q repository.DBExecutor, code int16) (*domain.Currency, error) {
	return f.findCurrency(q, func(c domain.Currency) bool { return c.NumericCode == code })
}

func (f *fakeStore) GetByAlphaCode(_ context.Context, q repository.DBExecutor, code string) (*domain.Currency, error) {
	return f.findCurrency(q, func(c domain.Currency) bool { return c.AlphaCode == code })
}

func (f *fakeStore) ListCurrencies(_ context.Context, q repository.DBExecutor) ([]domain.Currency, error) {
	var out []domain.Currency
	err := f.with(q, func(st *fakeState) error {
		for _, c := range st.currencies {
			out = append(out, c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].AlphaCode < out[j].AlphaCode })
	return out, err
}

// Categories

func siblingTaken(st *fakeState, ownerID int64, parentID *uuid.UUID, title string, self uuid.UUID) bool {
	for _, c := range st.categories {
		if c.ID != self && c.OwnerID == ownerID && c.Title == title && domain.SameParent(c.ParentID, parentID) {
			return true
		}
	}
	return false
}

func (f *fakeStore) CreateCategory(_ context.Context, q repository.DBExecutor, c *domain.Category) error {
	return f.with(q, func(st *fakeState) error {
		if siblingTaken(st, c.OwnerID, c.ParentID, c.Title, c.ID) {
			return util.ErrDuplicateCategory
		}
		st.categories[c.ID] = *c
		return nil
	})
}

func (f *fakeStore) GetCategoryByID(_ context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Category, error) {
	var found *domain.Category
	err := f.with(q, func(st *fakeState) error {
		c, ok := st.categories[id]
		if !ok {
			return util.ErrCategoryNotFound
		}
		found = &c
		return nil
	})
	return found, err
}

func (f *fakeStore) LockOwnerTree(context.Context, repository.DBExecutor, int64) error {
	return nil
}

func (f *fakeStore) FindSibling(_ context.Context, q repository.DBExecutor, ownerID int64, parentID *uuid.UUID, title string) (*domain.Category, error) {
	var found *domain.Category
	err := f.with(q, func(st *fakeState) error {
		for _, c := range st.categories {
			if c.OwnerID == ownerID && c.Title == title && domain.SameParent(c.ParentID, parentID) {
				found = &c
				return nil
			}
		}
		return util.ErrCategoryNotFound
	})
	return found, err
}

func (f *fakeStore) ListCategoriesByOwner(_ context.Context, q repository.DBExecutor, ownerID int64) ([]domain.Category, error) {
	var out []domain.Category
	err := f.with(q, func(st *fakeState) error {
		for _, c := range st.categories {
			if c.OwnerID == ownerID {
				out = append(out, c)
			}
		}
		return nil
	})
	return out, err
}

func (f *fakeStore) CountChildren(_ context.Context, q repository.DBExecutor, id uuid.UUID) (int, error) {
	n := 0
	err := f.with(q, func(st *fakeState) error {
		for _, c := range st.categories {
			if c.ParentID != nil && *c.ParentID == id {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (f *fakeStore) MoveSubtree(_ context.Context, q repository.DBExecutor, ownerID int64, oldPath, newPath string, levelDelta int) (int64, error) {
	var n int64
	err := f.with(q, func(st *fakeState) error {
		for id, c := range st.categories {
			if c.OwnerID == ownerID && strings.HasPrefix(c.Path, oldPath) {
				c.Path = newPath + c.Path[len(oldPath):]
				c.Level += levelDelta
				st.categories[id] = c
				n++
			}
		}
		return nil
	})
	return n, err
}

func (f *fakeStore) SetParent(_ context.Context, q repository.DBExecutor, id uuid.UUID, parentID *uuid.UUID) error {
	return f.with(q, func(st *fakeState) error {
		c, ok := st.categories[id]
		if !ok {
			return util.ErrCategoryNotFound
		}
		if siblingTaken(st, c.OwnerID, parentID, c.Title, id) {
			return util.ErrDuplicateCategory
		}
		c.ParentID = parentID
		st.categories[id] = c
		return nil
	})
}

func (f *fakeStore) UpdateCategoryDetails(_ context.Context, q repository.DBExecutor, category *domain.Category) error {
	return f.with(q, func(st *fakeState) error {
		c, ok := st.categories[category.ID]
		if !ok {
			return util.ErrCategoryNotFound
		}
		if siblingTaken(st, c.OwnerID, c.ParentID, category.Title, c.ID) {
			return util.ErrDuplicateCategory
		}
		c.Title, c.Description, c.UpdatedAt = category.Title, category.Description, category.UpdatedAt
		st.categories[c.ID] = c
		return nil
	})
}

func (f *fakeStore) DeleteCategory(_ context.Context, q repository.DBExecutor, id uuid.UUID) error {
	return f.with(q, func(st *fakeState) error {
		if _, ok := st.categories[id]; !ok {
			return util.ErrCategoryNotFound
		}
		for _, c := range st.categories {
			if c.ParentID != nil && *c.ParentID == id {
				return util.ErrHasChildren
			}
		}
		for _, t := range st.transactions {
			if t.CategoryID != nil && *t.CategoryID == id {
				return util.ErrInUse
			}
		}
		delete(st.categories, id)
		return nil
	})
}

// Wallets

func (f *fakeStore) CreateWallet(_ context.Context, q repository.DBExecutor, w *domain.Wallet) error {
	return f.with(q, func(st *fakeState) error {
		if _, ok := st.currencies[w.CurrencyID]; !ok {
			return util.ErrCurrencyNotFound
		}
		st.wallets[w.ID] = *w
		return nil
	})
}

func (f *fakeStore) GetWalletByID(_ context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Wallet, error) {
	var found *domain.Wallet
	err := f.with(q, func(st *fakeState) error {
		w, ok := st.wallets[id]
		if !ok {
			return util.ErrWalletNotFound
		}
		found = &w
		return nil
	})
	return found, err
}

func (f *fakeStore) GetWalletByIDForUpdate(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Wallet, error) {
	return f.GetWalletByID(ctx, q, id)
}

func (f *fakeStore) ListWalletsByOwner(_ context.Context, q repository.DBExecutor, ownerID int64) ([]domain.Wallet, error) {
	var out []domain.Wallet
	err := f.with(q, func(st *fakeState) error {
		for _, w := range st.wallets {
			if w.OwnerID == ownerID {
				out = append(out, w)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, err
}

func (f *fakeStore) ListWalletIDs(_ context.Context, q repository.DBExecutor) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := f.with(q, func(st *fakeState) error {
		for id := range st.wallets {
			ids = append(ids, id)
		}
		return nil
	})
	return domain.SortedWalletIDs(ids...), err
}

func (f *fakeStore) UpdateWalletDetails(_ context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	return f.with(q, func(st *fakeState) error {
		w, ok := st.wallets[wallet.ID]
		if !ok {
			return util.ErrWalletNotFound
		}
		w.Title, w.Description, w.UpdatedAt = wallet.Title, wallet.Description, wallet.UpdatedAt
		st.wallets[w.ID] = w
		return nil
	})
}

func (f *fakeStore) AdjustBalance(_ context.Context, q repository.DBExecutor, walletID uuid.UUID, delta decimal.Decimal) error {
	return f.with(q, func(st *fakeState) error {
		if f.failAdjust > 0 {
			f.failAdjust--
			return &pq.Error{Code: "40001", Message: "could not serialize access due to concurrent update"}
		}
		w, ok := st.wallets[walletID]
		if !ok {
			return util.ErrWalletNotFound
		}
		w.Balance = w.Balance.Add(delta)
		st.wallets[walletID] = w
		return nil
	})
}

func (f *fakeStore) SetBalance(_ context.Context, q repository.DBExecutor, walletID uuid.UUID, balance decimal.Decimal) error {
	return f.with(q, func(st *fakeState) error {
		w, ok := st.wallets[walletID]
		if !ok {
			return util.ErrWalletNotFound
		}
		w.Balance = balance
		st.wallets[walletID] = w
		return nil
	})
}

func (f *fakeStore) DeleteWallet(_ context.Context, q repository.DBExecutor, id uuid.UUID) error {
	return f.with(q, func(st *fakeState) error {
		if _, ok := st.wallets[id]; !ok {
			return util.ErrWalletNotFound
		}
		for _, t := range st.transactions {
			if t.WalletID == id {
				return util.ErrInUse
			}
		}
		delete(st.wallets, id)
		return nil
	})
}

func (f *fakeStore) TotalsByOwner(_ context.Context, q repository.DBExecutor, ownerID int64) ([]domain.WalletTotal, error) {
	byCurrency := map[uuid.UUID]*domain.WalletTotal{}
	err := f.with(q, func(st *fakeState) error {
		for _, w := range st.wallets {
			if w.OwnerID != ownerID {
				continue
			}
			total, ok := byCurrency[w.CurrencyID]
			if !ok {
				total = &domain.WalletTotal{CurrencyID: w.CurrencyID, AlphaCode: st.currencies[w.CurrencyID].AlphaCode}
				byCurrency[w.CurrencyID] = total
			}
			total.Total = total.Total.Add(w.Balance)
			total.WalletCount++
		}
		return nil
	})
	out := make([]domain.WalletTotal, 0, len(byCurrency))
	for _, total := range byCurrency {
		out = append(out, *total)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AlphaCode < out[j].AlphaCode })
	return out, err
}

// Transactions

func (f *fakeStore) CreateTransaction(_ context.Context, q repository.DBExecutor, t *domain.Transaction) error {
	return f.with(q, func(st *fakeState) error {
		if _, ok := st.wallets[t.WalletID]; !ok {
			return util.ErrWalletNotFound
		}
		st.transactions[t.ID] = *t
		return nil
	})
}

func (f *fakeStore) GetTransactionByID(_ context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Transaction, error) {
	var found *domain.Transaction
	err := f.with(q, func(st *fakeState) error {
		t, ok := st.transactions[id]
		if !ok {
			return util.ErrTransactionNotFound
		}
		found = &t
		return nil
	})
	return found, err
}

func (f *fakeStore) GetTransactionByIDForUpdate(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Transaction, error) {
	return f.GetTransactionByID(ctx, q, id)
}

func (f *fakeStore) UpdateTransaction(_ context.Context, q repository.DBExecutor, t *domain.Transaction) error {
	return f.with(q, func(st *fakeState) error {
		if _, ok := st.transactions[t.ID]; !ok {
			return util.ErrTransactionNotFound
		}
		st.transactions[t.ID] = *t
		return nil
	})
}

func (f *fakeStore) DeleteTransaction(_ context.Context, q repository.DBExecutor, id uuid.UUID) error {
	return f.with(q, func(st *fakeState) error {
		if _, ok := st.transactions[id]; !ok {
			return util.ErrTransactionNotFound
		}
		delete(st.transactions, id)
		for lid, item := range st.lineItems {
			if item.TransactionID == id {
				delete(st.lineItems, lid)
			}
		}
		return nil
	})
}

func (f *fakeStore) ListTransactions(_ context.Context, q repository.DBExecutor, filter domain.TransactionFilter) ([]domain.Transaction, int64, error) {
	var matched []domain.Transaction
	err := f.with(q, func(st *fakeState) error {
		for _, t := range st.transactions {
			switch {
			case t.OwnerID != filter.OwnerID,
				filter.WalletID != nil && t.WalletID != *filter.WalletID,
				filter.CategoryID != nil && !domain.SameParent(t.CategoryID, filter.CategoryID),
				filter.Type != "" && t.Type != filter.Type,
				filter.From != nil && t.OccurredOn.Before(domain.TruncateToDate(*filter.From)),
				filter.To != nil && t.OccurredOn.After(domain.TruncateToDate(*filter.To)),
				filter.Search != "" && !strings.Contains(strings.ToLower(t.Description), strings.ToLower(filter.Search)):
				continue
			}
			matched = append(matched, t)
		}
		return nil
	})
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return domain.CompareIDs(matched[i].ID, matched[j].ID) < 0
	})
	total := int64(len(matched))
	start := min(filter.Offset, len(matched))
	end := min(start+filter.Limit, len(matched))
	return matched[start:end], total, err
}

func (f *fakeStore) CountByWallet(_ context.Context, q repository.DBExecutor, walletID uuid.UUID) (int, error) {
	n := 0
	err := f.with(q, func(st *fakeState) error {
		for _, t := range st.transactions {
			if t.WalletID == walletID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (f *fakeStore) CountByCategory(_ context.Context, q repository.DBExecutor, categoryID uuid.UUID) (int, error) {
	n := 0
	err := f.with(q, func(st *fakeState) error {
		for _, t := range st.transactions {
			if t.CategoryID != nil && *t.CategoryID == categoryID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (f *fakeStore) SumByWallet(_ context.Context, q repository.DBExecutor, walletID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	income, expense := decimal.Zero, decimal.Zero
	err := f.with(q, func(st *fakeState) error {
		for _, t := range st.transactions {
			if t.WalletID != walletID {
				continue
			}
			if t.Type == domain.TransactionTypeIncome {
				income = income.Add(t.Amount)
			} else {
				expense = expense.Add(t.Amount)
			}
		}
		return nil
	})
	return income, expense, err
}

func (f *fakeStore) Stats(_ context.Context, q repository.DBExecutor, ownerID int64, from, to time.Time) (*domain.TransactionStats, error) {
	stats := &domain.TransactionStats{}
	from, to = domain.TruncateToDate(from), domain.TruncateToDate(to)
	err := f.with(q, func(st *fakeState) error {
		for _, t := range st.transactions {
			if t.OwnerID != ownerID || t.OccurredOn.Before(from) || t.OccurredOn.After(to) {
				continue
			}
			if t.Type == domain.TransactionTypeIncome {
				stats.TotalIncome = stats.TotalIncome.Add(t.Amount)
			} else {
				stats.TotalExpense = stats.TotalExpense.Add(t.Amount)
			}
			stats.Count++
		}
		return nil
	})
	stats.Net = stats.TotalIncome.Sub(stats.TotalExpense)
	return stats, err
}

// Line items

func (f *fakeStore) CreateLineItem(_ context.Context, q repository.DBExecutor, item *domain.LineItem) error {
	return f.with(q, func(st *fakeState) error {
		if _, ok := st.transactions[item.TransactionID]; !ok {
			return util.ErrTransactionNotFound
		}
		st.lineItems[item.ID] = *item
		return nil
	})
}

func (f *fakeStore) GetLineItemByID(_ context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.LineItem, error) {
	var found *domain.LineItem
	err := f.with(q, func(st *fakeState) error {
		item, ok := st.lineItems[id]
		if !ok {
			return util.ErrLineItemNotFound
		}
		found = &item
		return nil
	})
	return found, err
}

func (f *fakeStore) ListByTransaction(_ context.Context, q repository.DBExecutor, transactionID uuid.UUID) ([]domain.LineItem, error) {
	var out []domain.LineItem
	err := f.with(q, func(st *fakeState) error {
		for _, item := range st.lineItems {
			if item.TransactionID == transactionID {
				out = append(out, item)
			}
		}
		return nil
	})
	return out, err
}

func (f *fakeStore) DeleteLineItem(_ context.Context, q repository.DBExecutor, id uuid.UUID) error {
	return f.with(q, func(st *fakeState) error {
		if _, ok := st.lineItems[id]; !ok {
			return util.ErrLineItemNotFound
		}
		delete(st.lineItems, id)
		return nil
	})
}

var (
	_ repository.CurrencyRepository    = (*fakeStore)(nil)
	_ repository.CategoryRepository    = (*fakeStore)(nil)
	_ repository.WalletRepository      = (*fakeStore)(nil)
	_ repository.TransactionRepository = (*fakeStore)(nil)
	_ repository.LineItemRepository    = (*fakeStore)(nil)
)
