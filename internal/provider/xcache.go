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

// Every paid cache creation includes this many operations.
const xcacheOperationsIncluded = 50_000

// XCacheOptions parameterise the xCache adapter.
type XCacheOptions struct {
	BaseURL       string
	DefaultRegion string
	Timeout       time.Duration
}

// XCache quotes managed Redis cache creation. Only the create operation is
// purchasable through the engine; topups happen directly with the provider.
type XCache struct {
	opts    XCacheOptions
	logger  zerolog.Logger
	probe   *x402.Client
	baseURL string
}

// NewXCache constructs the xCache adapter.
func NewXCache(opts XCacheOptions, probe *x402.Client, logger zerolog.Logger) *XCache {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.xcache.io"
	}
	if opts.DefaultRegion == "" {
		opts.DefaultRegion = "us-east-1"
	}

	return &XCache{
		opts:    opts,
		logger:  logger.With().Str("component", "xcache_adapter").Logger(),
		probe:   probe,
		baseURL: baseURL,
	}
}

func (x *XCache) Name() string             { return "xcache" }
func (x *XCache) Category() quote.Category { return quote.CategoryCache }

// Applicable limits xCache to cache-creation requests; the other operations
// exist in the protocol but have no purchasable quote yet.
func (x *XCache) Applicable(spec quote.Spec) bool {
	cs, ok := spec.(quote.CacheSpec)
	return ok && cs.Operation == quote.OperationCreate
}

// Quote probes the create endpoint for the creation price.
func (x *XCache) Quote(ctx context.Context, spec quote.Spec) (*quote.Quote, error) {
	cs, ok := spec.(quote.CacheSpec)
	if !ok {
		return nil, fmt.Errorf("xcache: unsupported spec %T", spec)
	}

	region := cs.Region
	if region == "" {
		region = x.opts.DefaultRegion
	}

	result, err := x.probe.Quote(ctx, "POST", x.baseURL+"/create", map[string]string{"region": region})
	if err != nil {
		return nil, err
	}

	frag := quote.Fragment{
		PriceUSD:      result.PriceUSD,
		HasPrice:      true,
		Currency:      result.Currency,
		BillingPeriod: "one-time",
		Metadata: map[string]any{
			"operation":           string(quote.OperationCreate),
			"region":              region,
			"operations_included": xcacheOperationsIncluded,
			"network":             result.Network,
			"recipient":           result.Recipient,
		},
	}
	if frag.Currency == "" {
		frag.Currency = "USDC"
	}
	attachX402(&frag, result)

	q := quote.Normalize(x.Name(), x.Category(), frag)
	return &q, nil
}

var _ Adapter = (*XCache)(nil)
