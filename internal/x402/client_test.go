package x402

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newTestClient() *Client {
	return NewClient(Options{Timeout: time.Second}, noopLogger())
}

func TestQuoteParsesChallenge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"accepts": []map[string]any{{
				"scheme":            "exact",
				"network":           "base",
				"payTo":             "0x1111111111111111111111111111111111111111",
				"asset":             "USDC",
				"maxAmountRequired": "10000",
				"description":       "pin 1MB",
			}},
		})
	}))
	defer srv.Close()

	result, err := newTestClient().Quote(context.Background(), http.MethodPost, srv.URL, map[string]any{"fileSize": 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Free {
		t.Fatal("a 402 response must not be classified as free")
	}
	if !result.PriceUSD.Equal(decimal.RequireFromString("0.01")) {
		t.Fatalf("expected price 0.01, got %s", result.PriceUSD)
	}
	if result.Currency != "USDC" || result.Network != "base" {
		t.Fatalf("unexpected currency/network: %s/%s", result.Currency, result.Network)
	}
	if result.Recipient != "0x1111111111111111111111111111111111111111" {
		t.Fatalf("unexpected recipient: %s", result.Recipient)
	}
	if result.Instructions == nil || result.Instructions.MaxAmountRequired != "10000" {
		t.Fatalf("instructions not carried through: %+v", result.Instructions)
	}
}

func TestQuoteHeadersWinOverAccepts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("asset", "USDT")
		w.Header().Set("network", "base-sepolia")
		w.Header().Set("payTo", "0x2222222222222222222222222222222222222222")
		w.WriteHeader(http.StatusPaymentRequired)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"accepts": []map[string]any{{
				"network":           "base",
				"payTo":             "0x1111111111111111111111111111111111111111",
				"asset":             "USDC",
				"maxAmountRequired": "250000",
			}},
		})
	}))
	defer srv.Close()

	result, err := newTestClient().Quote(context.Background(), http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Currency != "USDT" || result.Network != "base-sepolia" {
		t.Fatalf("headers should override accepts fields, got %s/%s", result.Currency, result.Network)
	}
	if result.Recipient != "0x2222222222222222222222222222222222222222" {
		t.Fatalf("unexpected recipient: %s", result.Recipient)
	}
	if !result.PriceUSD.Equal(decimal.RequireFromString("0.25")) {
		t.Fatalf("expected price 0.25, got %s", result.PriceUSD)
	}
}

func TestQuoteNon402IsFree(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	result, err := newTestClient().Quote(context.Background(), http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Free {
		t.Fatal("non-402 status must be classified as free")
	}
	if !result.PriceUSD.IsZero() {
		t.Fatalf("free result must be zero priced, got %s", result.PriceUSD)
	}
}

func TestQuoteMalformedChallenge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	if _, err := newTestClient().Quote(context.Background(), http.MethodGet, srv.URL, nil); err == nil {
		t.Fatal("undecodable 402 body must surface an error")
	}
}

func TestQuoteUnreachableUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	if _, err := newTestClient().Quote(context.Background(), http.MethodGet, srv.URL, nil); err == nil {
		t.Fatal("network failure must surface an error")
	}
}

func TestQuoteFlagsUnverifiableRecipient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"accepts": []map[string]any{{
				"payTo":             "galaksio-treasury",
				"asset":             "USDC",
				"maxAmountRequired": "100",
			}},
		})
	}))
	defer srv.Close()

	result, err := newTestClient().Quote(context.Background(), http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Recipient != "galaksio-treasury" {
		t.Fatalf("non-EVM recipient must pass through untouched, got %s", result.Recipient)
	}
	if flagged, _ := result.Metadata["recipient_unverified"].(bool); !flagged {
		t.Fatal("non-EVM recipient must be flagged in metadata")
	}
}
