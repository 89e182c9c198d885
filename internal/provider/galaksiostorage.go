package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/galaksio/quote-engine/internal/quote"
	"github.com/galaksio/quote-engine/internal/x402"
)

// The upload endpoint charges a flat base fee on top of the variable
// Arweave network cost.
var galaksioBaseFeeUSD = decimal.NewFromFloat(0.01)

// GalaksioStorageOptions parameterise the Galaksio Storage adapter.
type GalaksioStorageOptions struct {
	BaseURL string
	Timeout time.Duration
}

// GalaksioStorage quotes permanent Arweave storage through the Galaksio
// Storage upload gateway. Pricing is dynamic: the probe carries a synthetic
// payload of the exact byte length being quoted so the 402 challenge prices
// the real upload.
type GalaksioStorage struct {
	opts    GalaksioStorageOptions
	logger  zerolog.Logger
	probe   *x402.Client
	baseURL string
}

// NewGalaksioStorage constructs the Galaksio Storage adapter.
func NewGalaksioStorage(opts GalaksioStorageOptions, probe *x402.Client, logger zerolog.Logger) *GalaksioStorage {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://storage.galaksio.cloud"
	}

	return &GalaksioStorage{
		opts:    opts,
		logger:  logger.With().Str("component", "galaksio_storage_adapter").Logger(),
		probe:   probe,
		baseURL: baseURL,
	}
}

func (g *GalaksioStorage) Name() string             { return "galaksio-storage" }
func (g *GalaksioStorage) Category() quote.Category { return quote.CategoryStorage }

func (g *GalaksioStorage) Applicable(spec quote.Spec) bool {
	_, ok := spec.(quote.StorageSpec)
	return ok
}

// Quote probes the upload endpoint with a payload of the requested size.
func (g *GalaksioStorage) Quote(ctx context.Context, spec quote.Spec) (*quote.Quote, error) {
	ss, ok := spec.(quote.StorageSpec)
	if !ok {
		return nil, fmt.Errorf("galaksio-storage: unsupported spec %T", spec)
	}

	sizeBytes := ss.SizeBytes()
	payload := map[string]any{
		"data":         strings.Repeat("x", int(sizeBytes)),
		"content_type": "text/plain",
		"is_base64":    false,
	}

	result, err := g.probe.Quote(ctx, "POST", g.baseURL+"/upload", payload)
	if err != nil {
		return nil, err
	}

	frag := quote.Fragment{
		PriceUSD:      result.PriceUSD,
		HasPrice:      true,
		Currency:      result.Currency,
		BillingPeriod: "one-time",
		Metadata: map[string]any{
			"spec":            map[string]any{"size_gb": ss.SizeGB},
			"data_size_bytes": sizeBytes,
			"data_size_mb":    float64(sizeBytes) / 1_000_000,
			"network":         result.Network,
			"recipient":       result.Recipient,
			"platform":        "arweave",
			"permanent":       true,
		},
	}
	if frag.Currency == "" {
		frag.Currency = "USDC"
	}
	attachX402(&frag, result)
	g.decomposePrice(result, &frag)

	q := quote.Normalize(g.Name(), g.Category(), frag)
	return &q, nil
}

// decomposePrice splits the quoted total into the flat base fee and the
// variable Arweave cost, preferring the server's own dynamic-pricing figure
// from accepts[0].extra when present.
func (g *GalaksioStorage) decomposePrice(result *x402.Result, frag *quote.Fragment) {
	total := result.PriceUSD
	if extraPrice, ok := result.Extra["priceUSD"].(float64); ok {
		total = decimal.NewFromFloat(extraPrice)
	}
	if dynamic, ok := result.Extra["dynamicPricing"].(bool); ok {
		frag.Metadata["dynamic_pricing"] = dynamic
	}

	storageCost := total.Sub(galaksioBaseFeeUSD)
	if storageCost.IsNegative() {
		storageCost = decimal.Zero
	}

	frag.Metadata["price_breakdown"] = map[string]string{
		"total_usd":        total.String(),
		"base_fee_usd":     galaksioBaseFeeUSD.String(),
		"storage_cost_usd": storageCost.String(),
	}
}

var _ Adapter = (*GalaksioStorage)(nil)
