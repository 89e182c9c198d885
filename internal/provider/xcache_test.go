package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/galaksio/quote-engine/internal/quote"
)

func TestXCacheOnlyCreateIsApplicable(t *testing.T) {
	x := NewXCache(XCacheOptions{}, testProbe(), noopLogger())
	if !x.Applicable(quote.CacheSpec{SizeMB: 100, Operation: quote.OperationCreate}) {
		t.Fatal("create operations must be applicable")
	}
	for _, op := range []quote.CacheOperation{quote.OperationGet, quote.OperationSet, quote.OperationDelete, quote.OperationList, quote.OperationTTL} {
		if x.Applicable(quote.CacheSpec{SizeMB: 100, Operation: op}) {
			t.Fatalf("operation %s has no purchasable quote", op)
		}
	}
}

func TestXCacheQuoteCreate(t *testing.T) {
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/create" {
			t.Errorf("unexpected probe path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusPaymentRequired)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"accepts": []map[string]any{{
				"network":           "base",
				"payTo":             "0x1111111111111111111111111111111111111111",
				"asset":             "USDC",
				"maxAmountRequired": "1000000",
			}},
		})
	}))
	defer srv.Close()

	x := NewXCache(XCacheOptions{BaseURL: srv.URL, DefaultRegion: "eu-west-1"}, testProbe(), noopLogger())
	q, err := x.Quote(context.Background(), quote.CacheSpec{SizeMB: 100, Operation: quote.OperationCreate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payload["region"] != "eu-west-1" {
		t.Fatalf("default region must be used when the spec has none, got %s", payload["region"])
	}
	if !q.PriceUSD.Decimal.Equal(decimal.RequireFromString("1")) {
		t.Fatalf("expected price 1, got %s", q.PriceUSD.Decimal)
	}
	if q.Metadata["operations_included"] != 50_000 {
		t.Fatalf("included operations missing: %v", q.Metadata["operations_included"])
	}
}
