package storage

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ComparisonRecord is one persisted comparison outcome: the winning quote
// plus the full ranked set, kept as an append-only audit trail.
type ComparisonRecord struct {
	ID            int64
	Category      string
	Spec          json.RawMessage
	BestProvider  string
	BestPriceUSD  decimal.NullDecimal
	Currency      string
	BillingPeriod string
	QuoteCount    int
	Quotes        json.RawMessage
	CreatedAt     time.Time
}
