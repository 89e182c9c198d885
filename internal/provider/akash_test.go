package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/galaksio/quote-engine/internal/quote"
	"github.com/galaksio/quote-engine/internal/x402"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testProbe() *x402.Client {
	return x402.NewClient(x402.Options{Timeout: time.Second}, noopLogger())
}

func TestAkashQuoteSuccess(t *testing.T) {
	var received map[string]int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"akash": 2.5,
			"aws":   10.2,
			"gcp":   9.8,
			"azure": 11.0,
		})
	}))
	defer srv.Close()

	a := NewAkash(AkashOptions{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	q, err := a.Quote(context.Background(), quote.ComputeSpec{CPUCores: 2, MemoryGB: 4, StorageGB: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if received["cpu"] != 2000 {
		t.Fatalf("cpu must be sent in millicores, got %d", received["cpu"])
	}
	if received["memory"] != 4_000_000_000 {
		t.Fatalf("memory must be sent in decimal bytes, got %d", received["memory"])
	}

	if !q.Priced() {
		t.Fatal("quote must carry a price")
	}
	if !q.PriceUSD.Decimal.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("expected price 2.5, got %s", q.PriceUSD.Decimal)
	}
	if q.BillingPeriod != "month" {
		t.Fatalf("expected monthly billing, got %s", q.BillingPeriod)
	}

	competitors, ok := q.Metadata["competitors"].(map[string]any)
	if !ok {
		t.Fatal("competitor pricing must be preserved in metadata")
	}
	if competitors["aws"] == nil {
		t.Fatal("aws competitor price missing")
	}
}

func TestAkashQuoteMissingOwnPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"aws": 10.2})
	}))
	defer srv.Close()

	a := NewAkash(AkashOptions{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	q, err := a.Quote(context.Background(), quote.ComputeSpec{CPUCores: 1, MemoryGB: 1, StorageGB: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Priced() {
		t.Fatal("a response without an akash price must yield an unpriced quote")
	}
}

func TestAkashQuoteUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	a := NewAkash(AkashOptions{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	if _, err := a.Quote(context.Background(), quote.ComputeSpec{CPUCores: 1, MemoryGB: 1, StorageGB: 1}); err == nil {
		t.Fatal("upstream failure must surface an error")
	}
}

func TestAkashNotApplicableToCodeOnlySpecs(t *testing.T) {
	a := NewAkash(AkashOptions{}, noopLogger())
	if a.Applicable(quote.ComputeSpec{CodeSizeBytes: 1024, Language: "python"}) {
		t.Fatal("code execution specs without CPU cores are not priceable on akash")
	}
	if !a.Applicable(quote.ComputeSpec{CPUCores: 1}) {
		t.Fatal("VM shaped specs must be applicable")
	}
	if a.Applicable(quote.StorageSpec{SizeGB: 1}) {
		t.Fatal("storage specs must not be applicable")
	}
}
