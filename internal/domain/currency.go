// internal/domain/currency.go
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"family-ledger/internal/util"
)

// The default currency row, created on demand when the table is empty.
const (
	DefaultCurrencyNumericCode int16 = 643
	DefaultCurrencyAlphaCode         = "RUB"
	DefaultCurrencyName              = "Российский рубль"
)

// Currency is a reference row. Codes never change once created.
type Currency struct {
	ID          uuid.UUID `db:"id" json:"id"`
	NumericCode int16     `db:"numeric_code" json:"numeric_code"`
	AlphaCode   string    `db:"alpha_code" json:"alpha_code"`
	Name        string    `db:"name" json:"name"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CurrencyRow is one entry of an external currency feed.
type CurrencyRow struct {
	NumericCode int16  `json:"numeric_code"`
	AlphaCode   string `json:"alpha_code"`
	Name        string `json:"name"`
}

// DefaultCurrencyRow returns the feed row for the default currency.
func DefaultCurrencyRow() CurrencyRow {
	return CurrencyRow{
		NumericCode: DefaultCurrencyNumericCode,
		AlphaCode:   DefaultCurrencyAlphaCode,
		Name:        DefaultCurrencyName,
	}
}

// Normalize trims the row and upper-cases its alpha code, then validates it.
func (r CurrencyRow) Normalize() (CurrencyRow, error) {
	r.AlphaCode = strings.ToUpper(strings.TrimSpace(r.AlphaCode))
	r.Name = strings.TrimSpace(r.Name)

	if r.NumericCode < 1 || r.NumericCode > 999 {
		return r, util.NewValidationError("numeric_code", "must be between 1 and 999")
	}
	if !IsAlphaCode(r.AlphaCode) {
		return r, util.NewValidationError("alpha_code", "must be three latin letters")
	}
	if r.Name == "" {
		return r, util.NewValidationError("name", "is required")
	}
	if len([]rune(r.Name)) > 255 {
		return r, util.NewValidationError("name", "must be at most 255 characters")
	}
	return r, nil
}

// NewCurrency creates a Currency from an already normalized feed row.
func NewCurrency(row CurrencyRow) *Currency {
	now := time.Now().UTC()
	return &Currency{
		ID:          uuid.New(),
		NumericCode: row.NumericCode,
		AlphaCode:   row.AlphaCode,
		Name:        row.Name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsAlphaCode reports whether s is an upper-case three letter code.
func IsAlphaCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
