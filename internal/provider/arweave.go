package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/galaksio/quote-engine/internal/quote"
)

// 1 AR = 1e12 winston.
const winstonDecimals = 12

// ArweaveOptions parameterise the Arweave pricing adapter.
type ArweaveOptions struct {
	PriceURL string
	FeedURL  string
	Timeout  time.Duration
}

// Arweave quotes permanent storage straight from the Arweave gateway price
// endpoint. The gateway answers in winston, so a second call to a public
// AR/USD price feed converts the total; when the feed is down or reports
// zero the quote stays unpriced rather than pretending to be free.
type Arweave struct {
	opts     ArweaveOptions
	logger   zerolog.Logger
	client   *http.Client
	priceURL string
	feedURL  string
}

// NewArweave constructs the Arweave adapter.
func NewArweave(opts ArweaveOptions, logger zerolog.Logger) *Arweave {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	priceURL := strings.TrimRight(opts.PriceURL, "/")
	if priceURL == "" {
		priceURL = "https://arweave.net/price"
	}
	feedURL := opts.FeedURL
	if feedURL == "" {
		feedURL = "https://api.coingecko.com/api/v3/simple/price?ids=arweave&vs_currencies=usd"
	}

	return &Arweave{
		opts:     opts,
		logger:   logger.With().Str("component", "arweave_adapter").Logger(),
		client:   &http.Client{Timeout: timeout},
		priceURL: priceURL,
		feedURL:  feedURL,
	}
}

func (a *Arweave) Name() string             { return "arweave" }
func (a *Arweave) Category() quote.Category { return quote.CategoryStorage }

// Applicable restricts Arweave to explicitly permanent storage requests;
// there is no ephemeral tier to price.
func (a *Arweave) Applicable(spec quote.Spec) bool {
	ss, ok := spec.(quote.StorageSpec)
	return ok && ss.Permanent
}

// Quote fetches the one-time cost of storing the requested bytes forever.
func (a *Arweave) Quote(ctx context.Context, spec quote.Spec) (*quote.Quote, error) {
	ss, ok := spec.(quote.StorageSpec)
	if !ok {
		return nil, fmt.Errorf("arweave: unsupported spec %T", spec)
	}

	sizeBytes := ss.SizeBytes()

	winston, err := a.fetchWinstonPrice(ctx, sizeBytes)
	if err != nil {
		return nil, err
	}
	priceAR := winston.Shift(-winstonDecimals)

	frag := quote.Fragment{
		Currency:      "AR",
		BillingPeriod: "one-time",
		Metadata: map[string]any{
			"spec":          map[string]any{"size_gb": ss.SizeGB},
			"bytes":         sizeBytes,
			"price_winston": winston.String(),
			"price_ar":      priceAR.String(),
			"permanent":     true,
		},
	}

	rate, err := a.fetchUSDRate(ctx)
	if err != nil || rate.IsZero() {
		if err != nil {
			a.logger.Warn().Err(err).Msg("AR/USD feed unavailable; quote left unpriced")
		}
		frag.PriceUnknown = true
	} else {
		frag.PriceUSD = priceAR.Mul(rate)
		frag.HasPrice = true
		frag.Metadata["ar_usd_rate"] = rate.String()
	}

	q := quote.Normalize(a.Name(), a.Category(), frag)
	return &q, nil
}

func (a *Arweave) fetchWinstonPrice(ctx context.Context, sizeBytes int64) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/%d", a.priceURL, sizeBytes)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Decimal{}, err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("fetch arweave price: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return decimal.Decimal{}, fmt.Errorf("arweave price status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	winston, err := decimal.NewFromString(strings.TrimSpace(string(raw)))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse winston price %q: %w", strings.TrimSpace(string(raw)), err)
	}
	return winston, nil
}

func (a *Arweave) fetchUSDRate(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.feedURL, nil)
	if err != nil {
		return decimal.Decimal{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("fetch AR/USD rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Decimal{}, fmt.Errorf("AR/USD feed status %d", resp.StatusCode)
	}

	var feed map[string]struct {
		USD float64 `json:"usd"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return decimal.Decimal{}, fmt.Errorf("decode AR/USD feed: %w", err)
	}

	return decimal.NewFromFloat(feed["arweave"].USD), nil
}

var _ Adapter = (*Arweave)(nil)
