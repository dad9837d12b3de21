// internal/domain/line_item.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxLineQuantity is the largest quantity a SMALLINT column holds.
const MaxLineQuantity = 32767

// LineItem is a receipt-style row under a transaction. It never affects the
// wallet balance; the parent transaction's Amount is authoritative.
type LineItem struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	TransactionID uuid.UUID       `db:"transaction_id" json:"transaction_id"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	Quantity      int             `db:"quantity" json:"quantity"`
	Tax           decimal.Decimal `db:"tax" json:"tax"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

func NewLineItem(transactionID uuid.UUID, amount decimal.Decimal, quantity int, tax decimal.Decimal) *LineItem {
	now := time.Now().UTC()
	return &LineItem{
		ID:            uuid.New(),
		TransactionID: transactionID,
		Amount:        amount,
		Quantity:      quantity,
		Tax:           tax,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
