// internal/domain/money.go
package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	"family-ledger/internal/util"
)

// Column precision of monetary fields: NUMERIC(14,2) for amounts and balances,
// NUMERIC(5,2) for tax.
const (
	MoneyScale          = 2
	AmountIntegerDigits = 12
	TaxIntegerDigits    = 3
)

var (
	amountLimit = decimal.New(1, AmountIntegerDigits)
	taxLimit    = decimal.New(1, TaxIntegerDigits)
)

// NormalizeAmount rounds a transaction or line amount to cents and checks it
// fits the column. When positive is set, zero and negative amounts are rejected.
func NormalizeAmount(field string, amount decimal.Decimal, positive bool) (decimal.Decimal, error) {
	rounded := amount.Round(MoneyScale)
	if positive && !rounded.IsPositive() {
		return decimal.Zero, util.NewValidationError(field, "must be greater than zero")
	}
	if !positive && rounded.IsNegative() {
		return decimal.Zero, util.NewValidationError(field, "must not be negative")
	}
	if rounded.Abs().GreaterThanOrEqual(amountLimit) {
		return decimal.Zero, util.NewValidationError(field, fmt.Sprintf("must be less than %s", amountLimit))
	}
	return rounded, nil
}

// NormalizeBalance rounds a wallet balance to cents. Balances may be negative.
func NormalizeBalance(field string, balance decimal.Decimal) (decimal.Decimal, error) {
	rounded := balance.Round(MoneyScale)
	if rounded.Abs().GreaterThanOrEqual(amountLimit) {
		return decimal.Zero, util.NewValidationError(field, fmt.Sprintf("must be within ±%s", amountLimit))
	}
	return rounded, nil
}

// NormalizeTax rounds an informational tax figure and checks it fits NUMERIC(5,2).
func NormalizeTax(field string, tax decimal.Decimal) (decimal.Decimal, error) {
	rounded := tax.Round(MoneyScale)
	if rounded.IsNegative() {
		return decimal.Zero, util.NewValidationError(field, "must not be negative")
	}
	if rounded.GreaterThanOrEqual(taxLimit) {
		return decimal.Zero, util.NewValidationError(field, fmt.Sprintf("must be less than %s", taxLimit))
	}
	return rounded, nil
}
