package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/galaksio/quote-engine/internal/quote"
)

func TestArweaveQuoteSuccess(t *testing.T) {
	priceSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1 AR for any size.
		_, _ = w.Write([]byte("1000000000000"))
	}))
	defer priceSrv.Close()

	feedSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"arweave":{"usd":8.5}}`))
	}))
	defer feedSrv.Close()

	a := NewArweave(ArweaveOptions{PriceURL: priceSrv.URL, FeedURL: feedSrv.URL, Timeout: time.Second}, noopLogger())
	q, err := a.Quote(context.Background(), quote.StorageSpec{SizeGB: 1, Permanent: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !q.Priced() {
		t.Fatal("quote must carry a price when the feed is healthy")
	}
	if !q.PriceUSD.Decimal.Equal(decimal.RequireFromString("8.5")) {
		t.Fatalf("expected 1 AR at 8.5 USD, got %s", q.PriceUSD.Decimal)
	}
	if q.Currency != "AR" {
		t.Fatalf("expected AR currency, got %s", q.Currency)
	}
	if q.BillingPeriod != "one-time" {
		t.Fatalf("expected one-time billing, got %s", q.BillingPeriod)
	}
}

func TestArweaveQuoteUnpricedWhenFeedDead(t *testing.T) {
	priceSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("500000000000"))
	}))
	defer priceSrv.Close()

	feedSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer feedSrv.Close()

	a := NewArweave(ArweaveOptions{PriceURL: priceSrv.URL, FeedURL: feedSrv.URL, Timeout: time.Second}, noopLogger())
	q, err := a.Quote(context.Background(), quote.StorageSpec{SizeGB: 1, Permanent: true})
	if err != nil {
		t.Fatalf("a dead USD feed is not a provider failure: %v", err)
	}

	if q.Priced() {
		t.Fatal("the quote must stay unpriced without a usable AR/USD rate")
	}
	if q.Metadata["price_winston"] != "500000000000" {
		t.Fatalf("native winston price must survive, got %v", q.Metadata["price_winston"])
	}
}

func TestArweaveOnlyPermanentRequests(t *testing.T) {
	a := NewArweave(ArweaveOptions{}, noopLogger())
	if a.Applicable(quote.StorageSpec{SizeGB: 1}) {
		t.Fatal("non-permanent storage must not be applicable")
	}
	if !a.Applicable(quote.StorageSpec{SizeGB: 1, Permanent: true}) {
		t.Fatal("permanent storage must be applicable")
	}
}
