// internal/domain/wallet.go
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal" // For precise monetary calculations

	"family-ledger/internal/util"
)

// Wallet represents a user's named, currency-denominated balance.
type Wallet struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	OwnerID     int64           `db:"owner_id" json:"owner_id"`
	Title       string          `db:"title" json:"title"`
	CurrencyID  uuid.UUID       `db:"currency_id" json:"currency_id"`
	Balance     decimal.Decimal `db:"balance" json:"balance"` // NUMERIC(14, 2); written only by the ledger
	Description string          `db:"description" json:"description"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// NewWallet creates a new Wallet instance with the given opening balance.
func NewWallet(ownerID int64, title string, currencyID uuid.UUID, openingBalance decimal.Decimal, description string) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       title,
		CurrencyID:  currencyID,
		Balance:     openingBalance,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// WalletTotal is the sum of one owner's wallet balances in a single currency.
type WalletTotal struct {
	CurrencyID  uuid.UUID       `db:"currency_id" json:"currency_id"`
	AlphaCode   string          `db:"alpha_code" json:"alpha_code"`
	Total       decimal.Decimal `db:"total" json:"total"`
	WalletCount int             `db:"wallet_count" json:"wallet_count"`
}

// NormalizeTitle trims a wallet or category title and enforces its length.
func NormalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", util.NewValidationError("title", "is required")
	}
	if len([]rune(title)) > 255 {
		return "", util.NewValidationError("title", "must be at most 255 characters")
	}
	return title, nil
}

// NormalizeDescription trims an optional description and enforces its length.
func NormalizeDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if len([]rune(description)) > 255 {
		return "", util.NewValidationError("description", "must be at most 255 characters")
	}
	return description, nil
}
