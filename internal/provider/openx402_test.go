package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/galaksio/quote-engine/internal/quote"
)

func TestOpenX402SizeLimitBeforeNetwork(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	o := NewOpenX402(OpenX402Options{BaseURL: srv.URL}, testProbe(), noopLogger())
	_, err := o.Quote(context.Background(), quote.StorageSpec{SizeGB: 1})

	var sizeErr *SizeLimitError
	if !errors.As(err, &sizeErr) {
		t.Fatalf("expected SizeLimitError, got %v", err)
	}
	if sizeErr.MaxBytes != 100_000_000 {
		t.Fatalf("unexpected ceiling: %d", sizeErr.MaxBytes)
	}
	if hits.Load() != 0 {
		t.Fatal("oversized requests must be rejected before any network call")
	}
}

func TestOpenX402QuoteFromChallenge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pin/quote_request" {
			t.Errorf("unexpected probe path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusPaymentRequired)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"accepts": []map[string]any{{
				"network":           "base",
				"payTo":             "0x1111111111111111111111111111111111111111",
				"asset":             "USDC",
				"maxAmountRequired": "50000",
			}},
		})
	}))
	defer srv.Close()

	o := NewOpenX402(OpenX402Options{BaseURL: srv.URL}, testProbe(), noopLogger())
	q, err := o.Quote(context.Background(), quote.StorageSpec{SizeGB: 0.05})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !q.PriceUSD.Decimal.Equal(decimal.RequireFromString("0.05")) {
		t.Fatalf("expected price 0.05, got %s", q.PriceUSD.Decimal)
	}
	if q.BillingPeriod != "one-time" {
		t.Fatalf("expected one-time billing, got %s", q.BillingPeriod)
	}
	if q.Metadata["platform"] != "ipfs" {
		t.Fatalf("expected ipfs platform metadata, got %v", q.Metadata["platform"])
	}
	if _, ok := q.Metadata["workflow"]; !ok {
		t.Fatal("pin workflow hints must be preserved")
	}
}

func TestOpenX402FallsBackToPublishedRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"accepts": []map[string]any{{
				"network": "base",
				"payTo":   "0x1111111111111111111111111111111111111111",
				"asset":   "USDC",
			}},
		})
	}))
	defer srv.Close()

	o := NewOpenX402(OpenX402Options{BaseURL: srv.URL}, testProbe(), noopLogger())
	q, err := o.Quote(context.Background(), quote.StorageSpec{SizeGB: 0.05})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !q.PriceUSD.Decimal.Equal(decimal.RequireFromString("0.01")) {
		t.Fatalf("a challenge without an amount must use the published rate, got %s", q.PriceUSD.Decimal)
	}
	if q.Metadata["price_source"] != "published_rate" {
		t.Fatalf("price source must be flagged, got %v", q.Metadata["price_source"])
	}
}
