package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"family-ledger/internal/domain"
)

// CurrencyFeedMessage carries a batch of currency reference rows published by
// an upstream feed. Rows already known to the ledger are skipped on import.
type CurrencyFeedMessage struct {
	Source     string               `json:"source"`
	Currencies []domain.CurrencyRow `json:"currencies"`
	Timestamp  time.Time            `json:"timestamp"`
}

// NewCurrencyFeedMessage creates a feed message stamped with the current time.
func NewCurrencyFeedMessage(source string, rows []domain.CurrencyRow) *CurrencyFeedMessage {
	return &CurrencyFeedMessage{
		Source:     source,
		Currencies: rows,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *CurrencyFeedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// CurrencyFeedMessageFromJSON decodes a feed message. A message without rows
// is rejected.
func CurrencyFeedMessageFromJSON(data []byte) (*CurrencyFeedMessage, error) {
	var msg CurrencyFeedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if len(msg.Currencies) == 0 {
		return nil, fmt.Errorf("currency feed message has no rows")
	}
	return &msg, nil
}
