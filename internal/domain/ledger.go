// internal/domain/ledger.go
package domain

import (
	"bytes"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Effect is what one transaction contributes to one wallet.
type Effect struct {
	WalletID uuid.UUID
	Type     TransactionType
	Amount   decimal.Decimal
}

// Signed returns +Amount for income and -Amount for expense.
func (e Effect) Signed() decimal.Decimal {
	if e.Type == TransactionTypeIncome {
		return e.Amount
	}
	return e.Amount.Neg()
}

// BalanceAdjustment is a delta to add to one wallet's stored balance.
type BalanceAdjustment struct {
	WalletID uuid.UUID
	Delta    decimal.Decimal
}

// PlanCreate returns the adjustment applied when a transaction is inserted.
func PlanCreate(e Effect) []BalanceAdjustment {
	return compactAdjustments(BalanceAdjustment{WalletID: e.WalletID, Delta: e.Signed()})
}

// PlanDelete returns the adjustment that reverses a deleted transaction.
func PlanDelete(e Effect) []BalanceAdjustment {
	return compactAdjustments(BalanceAdjustment{WalletID: e.WalletID, Delta: e.Signed().Neg()})
}

// PlanUpdate returns the adjustments that replace old with updated.
//
// On one wallet the four type combinations net out as:
//
//	IN -> IN  new - old
//	EX -> EX  old - new
//	IN -> EX  -old - new
//	EX -> IN  old + new
//
// When the wallet changes, the reversal on the old wallet and the application
// on the new wallet are two independent adjustments.
func PlanUpdate(old, updated Effect) []BalanceAdjustment {
	if old.WalletID != updated.WalletID {
		return compactAdjustments(
			BalanceAdjustment{WalletID: old.WalletID, Delta: old.Signed().Neg()},
			BalanceAdjustment{WalletID: updated.WalletID, Delta: updated.Signed()},
		)
	}

	var delta decimal.Decimal
	switch {
	case old.Type == TransactionTypeIncome && updated.Type == TransactionTypeIncome:
		delta = updated.Amount.Sub(old.Amount)
	case old.Type == TransactionTypeExpense && updated.Type == TransactionTypeExpense:
		delta = old.Amount.Sub(updated.Amount)
	case old.Type == TransactionTypeIncome && updated.Type == TransactionTypeExpense:
		delta = old.Amount.Neg().Sub(updated.Amount)
	case old.Type == TransactionTypeExpense && updated.Type == TransactionTypeIncome:
		delta = old.Amount.Add(updated.Amount)
	}
	return compactAdjustments(BalanceAdjustment{WalletID: old.WalletID, Delta: delta})
}

// compactAdjustments drops zero deltas and orders the rest by wallet id, the
// order in which wallet rows are locked.
func compactAdjustments(adjustments ...BalanceAdjustment) []BalanceAdjustment {
	out := make([]BalanceAdjustment, 0, len(adjustments))
	for _, a := range adjustments {
		if !a.Delta.IsZero() {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return CompareIDs(out[i].WalletID, out[j].WalletID) < 0 })
	return out
}

// CompareIDs orders uuids bytewise, matching PostgreSQL's uuid ordering.
func CompareIDs(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}

// SortedWalletIDs returns the distinct ids in lock order.
func SortedWalletIDs(ids ...uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return CompareIDs(out[i], out[j]) < 0 })
	return out
}

// BalanceReconciliation is the outcome of recomputing a wallet balance from
// its transactions.
type BalanceReconciliation struct {
	WalletID   uuid.UUID       `json:"wallet_id"`
	Previous   decimal.Decimal `json:"previous"`
	Recomputed decimal.Decimal `json:"recomputed"`
	Drift      decimal.Decimal `json:"drift"` // Previous - Recomputed
}

// Drifted reports whether the stored balance disagreed with the transactions.
func (r BalanceReconciliation) Drifted() bool {
	return !r.Drift.IsZero()
}
