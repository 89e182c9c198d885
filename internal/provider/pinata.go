package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/galaksio/quote-engine/internal/quote"
	"github.com/galaksio/quote-engine/internal/x402"
)

// PinataOptions parameterise the Pinata pin adapter.
type PinataOptions struct {
	BaseURL string
	Timeout time.Duration
}

// Pinata quotes IPFS pinning through Pinata's payment-gated pin endpoint. A
// probe carrying the exact file size triggers the 402 challenge whose
// payment requirement is the quote.
type Pinata struct {
	opts    PinataOptions
	logger  zerolog.Logger
	probe   *x402.Client
	baseURL string
}

// NewPinata constructs the Pinata adapter.
func NewPinata(opts PinataOptions, probe *x402.Client, logger zerolog.Logger) *Pinata {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://402.pinata.cloud/v1"
	}

	return &Pinata{
		opts:    opts,
		logger:  logger.With().Str("component", "pinata_adapter").Logger(),
		probe:   probe,
		baseURL: baseURL,
	}
}

func (p *Pinata) Name() string             { return "pinata" }
func (p *Pinata) Category() quote.Category { return quote.CategoryStorage }

func (p *Pinata) Applicable(spec quote.Spec) bool {
	_, ok := spec.(quote.StorageSpec)
	return ok
}

// Quote probes the pin endpoint with the requested size.
func (p *Pinata) Quote(ctx context.Context, spec quote.Spec) (*quote.Quote, error) {
	ss, ok := spec.(quote.StorageSpec)
	if !ok {
		return nil, fmt.Errorf("pinata: unsupported spec %T", spec)
	}

	sizeBytes := ss.SizeBytes()
	payload := map[string]any{
		"fileSize":  sizeBytes,
		"name":      "quote-probe.txt",
		"keyvalues": map[string]string{"purpose": "quote_probe"},
	}

	result, err := p.probe.Quote(ctx, "POST", p.baseURL+"/pin/public", payload)
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
			"file_size_bytes": sizeBytes,
			"file_size_mb":    float64(sizeBytes) / 1_000_000,
			"network":         result.Network,
			"recipient":       result.Recipient,
			"platform":        "ipfs",
		},
	}
	if frag.Currency == "" {
		frag.Currency = "USDC"
	}
	attachX402(&frag, result)

	q := quote.Normalize(p.Name(), p.Category(), frag)
	return &q, nil
}

var _ Adapter = (*Pinata)(nil)
