package quote

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a normalized, comparable price estimate from one provider for one
// resource specification. The canonical fields are fixed; everything
// provider-specific rides along in Metadata and is never interpreted by the
// engine. A Quote is constructed once per request and not mutated afterwards.
type Quote struct {
	Provider      string              `json:"provider"`
	Category      Category            `json:"category"`
	PriceUSD      decimal.NullDecimal `json:"price_usd"`
	Currency      string              `json:"currency"`
	BillingPeriod string              `json:"billing_period"`
	Timestamp     time.Time           `json:"timestamp"`
	Metadata      map[string]any      `json:"metadata,omitempty"`
}

// Priced reports whether the quote carries a usable USD price. A quote whose
// currency could not be converted stays unpriced and never competes in a
// comparison.
func (q Quote) Priced() bool {
	return q.PriceUSD.Valid
}

// Fragment is the partial result an adapter hands to the normalizer. The
// price is tri-state: set, absent (normalized to zero), or explicitly
// unknown (kept null so the engine can disqualify it).
type Fragment struct {
	PriceUSD      decimal.Decimal
	HasPrice      bool
	PriceUnknown  bool
	Currency      string
	BillingPeriod string
	Metadata      map[string]any
}

// Normalize merges an adapter fragment into the canonical Quote shape,
// filling defaults for the required fields.
func Normalize(provider string, category Category, frag Fragment) Quote {
	q := Quote{
		Provider:      provider,
		Category:      category,
		Currency:      frag.Currency,
		BillingPeriod: frag.BillingPeriod,
		Timestamp:     time.Now().UTC(),
		Metadata:      frag.Metadata,
	}

	switch {
	case frag.PriceUnknown:
		// leave PriceUSD null
	case frag.HasPrice:
		q.PriceUSD = decimal.NewNullDecimal(frag.PriceUSD)
	default:
		q.PriceUSD = decimal.NewNullDecimal(decimal.Zero)
	}

	if q.Currency == "" {
		q.Currency = "USD"
	}
	if q.BillingPeriod == "" {
		q.BillingPeriod = "month"
	}
	if q.Metadata == nil {
		q.Metadata = map[string]any{}
	}

	return q
}
