// internal/domain/transaction.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal" // For precise monetary calculations

	"family-ledger/internal/util"
)

// TransactionType is either income or expense.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "IN"
	TransactionTypeExpense TransactionType = "EX"
)

// Valid reports whether t is one of the known types.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// ParseTransactionType validates a raw type string.
func ParseTransactionType(raw string) (TransactionType, error) {
	t := TransactionType(raw)
	if !t.Valid() {
		return "", util.NewValidationError("t_type", "must be IN or EX")
	}
	return t, nil
}

// Transaction represents a single income or expense on one wallet.
type Transaction struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	OwnerID     int64           `db:"owner_id" json:"owner_id"`
	WalletID    uuid.UUID       `db:"wallet_id" json:"wallet_id"`
	CategoryID  *uuid.UUID      `db:"category_id" json:"category_id"` // nil when uncategorized
	Type        TransactionType `db:"t_type" json:"t_type"`           // IN or EX
	Amount      decimal.Decimal `db:"amount" json:"amount"`           // NUMERIC(14, 2), always > 0
	Tax         decimal.Decimal `db:"tax" json:"tax"`                 // NUMERIC(5, 2), informational only
	Description string          `db:"description" json:"description"` // up to 255 characters
	OccurredOn  time.Time       `db:"occurred_on" json:"occurred_on"` // business date
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// NewTransaction creates a new Transaction instance.
// A zero occurredOn defaults to the creation date.
func NewTransaction(
	ownerID int64,
	walletID uuid.UUID,
	categoryID *uuid.UUID,
	txType TransactionType,
	amount decimal.Decimal,
	tax decimal.Decimal,
	description string,
	occurredOn time.Time,
) *Transaction {
	now := time.Now().UTC()
	if occurredOn.IsZero() {
		occurredOn = now
	}
	return &Transaction{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		WalletID:    walletID,
		CategoryID:  categoryID,
		Type:        txType,
		Amount:      amount,
		Tax:         tax,
		Description: description,
		OccurredOn:  TruncateToDate(occurredOn),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Effect returns the transaction's contribution to its wallet balance.
func (t *Transaction) Effect() Effect {
	return Effect{WalletID: t.WalletID, Type: t.Type, Amount: t.Amount}
}

// TruncateToDate drops the time of day, keeping t's calendar date.
func TruncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TransactionFilter narrows a transaction listing. Zero values mean "any".
type TransactionFilter struct {
	OwnerID    int64
	WalletID   *uuid.UUID
	CategoryID *uuid.UUID
	Type       TransactionType
	From       *time.Time // occurred_on >= From
	To         *time.Time // occurred_on <= To
	Search     string     // case-insensitive substring of description
	Limit      int
	Offset     int
}

// TransactionStats aggregates an owner's transactions over a date range.
type TransactionStats struct {
	TotalIncome  decimal.Decimal `db:"total_income" json:"total_income"`
	TotalExpense decimal.Decimal `db:"total_expense" json:"total_expense"`
	Net          decimal.Decimal `db:"-" json:"balance"`
	Count        int64           `db:"transaction_count" json:"transaction_count"`
}
