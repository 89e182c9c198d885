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

// OpenX402 caps uploads at 100 MB (decimal).
const (
	OpenX402MaxFileSizeMB    = 100
	openX402MaxFileSizeBytes = OpenX402MaxFileSizeMB * 1_000_000
)

// Pinning is flat-priced; this is the published rate, used when a challenge
// omits the amount.
var openX402DefaultPinPriceUSD = decimal.NewFromFloat(0.01)

// OpenX402Options parameterise the OpenX402 IPFS adapter.
type OpenX402Options struct {
	BaseURL string
	Timeout time.Duration
}

// OpenX402 quotes IPFS pinning on the OpenX402 service. Uploading to RAM is
// free; the payment (and therefore the quote) sits on the pin endpoint. The
// size ceiling is enforced locally before any probe goes out.
type OpenX402 struct {
	opts    OpenX402Options
	logger  zerolog.Logger
	probe   *x402.Client
	baseURL string
}

// NewOpenX402 constructs the OpenX402 adapter.
func NewOpenX402(opts OpenX402Options, probe *x402.Client, logger zerolog.Logger) *OpenX402 {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://ipfs.openx402.ai"
	}

	return &OpenX402{
		opts:    opts,
		logger:  logger.With().Str("component", "openx402_adapter").Logger(),
		probe:   probe,
		baseURL: baseURL,
	}
}

func (o *OpenX402) Name() string             { return "openx402" }
func (o *OpenX402) Category() quote.Category { return quote.CategoryStorage }

func (o *OpenX402) Applicable(spec quote.Spec) bool {
	_, ok := spec.(quote.StorageSpec)
	return ok
}

// Quote probes the pin endpoint, after validating the size against the
// provider ceiling.
func (o *OpenX402) Quote(ctx context.Context, spec quote.Spec) (*quote.Quote, error) {
	ss, ok := spec.(quote.StorageSpec)
	if !ok {
		return nil, fmt.Errorf("openx402: unsupported spec %T", spec)
	}

	sizeBytes := ss.SizeBytes()
	if sizeBytes > openX402MaxFileSizeBytes {
		return nil, &SizeLimitError{
			Provider:       o.Name(),
			RequestedBytes: sizeBytes,
			MaxBytes:       openX402MaxFileSizeBytes,
		}
	}

	// A dummy pin id is enough to trigger the 402 challenge; pricing is flat
	// per pin, not per byte.
	result, err := o.probe.Quote(ctx, "GET", o.baseURL+"/pin/quote_request", nil)
	if err != nil {
		return nil, err
	}

	price := result.PriceUSD
	priceSource := "challenge"
	if !result.Free && price.IsZero() {
		price = openX402DefaultPinPriceUSD
		priceSource = "published_rate"
	}

	frag := quote.Fragment{
		PriceUSD:      price,
		HasPrice:      true,
		Currency:      result.Currency,
		BillingPeriod: "one-time",
		Metadata: map[string]any{
			"spec":            map[string]any{"size_gb": ss.SizeGB},
			"file_size_bytes": sizeBytes,
			"file_size_mb":    float64(sizeBytes) / 1_000_000,
			"max_size_mb":     OpenX402MaxFileSizeMB,
			"price_source":    priceSource,
			"network":         result.Network,
			"recipient":       result.Recipient,
			"platform":        "ipfs",
			"permanent":       true,
			"workflow": map[string]string{
				"step_1": "POST /upload - upload file to RAM (free)",
				"step_2": "GET /pin/:id - pin to IPFS (payment required here)",
				"expiry": "files in RAM expire after 1 hour if not pinned",
			},
		},
	}
	if frag.Currency == "" {
		frag.Currency = "USDC"
	}
	attachX402(&frag, result)

	q := quote.Normalize(o.Name(), o.Category(), frag)
	return &q, nil
}

var _ Adapter = (*OpenX402)(nil)
