package provider

import (
	"bytes"
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

// AkashOptions parameterise the Akash pricing adapter.
type AkashOptions struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Akash quotes compute from the Akash Network pricing API. The API is plain
// REST: it takes the resource shape and answers with monthly USD prices for
// Akash alongside the big-cloud equivalents.
type Akash struct {
	opts    AkashOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewAkash constructs the Akash adapter.
func NewAkash(opts AkashOptions, logger zerolog.Logger) *Akash {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://console-api.akash.network/v1/pricing"
	}

	return &Akash{
		opts:    opts,
		logger:  logger.With().Str("component", "akash_adapter").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

func (a *Akash) Name() string             { return "akash" }
func (a *Akash) Category() quote.Category { return quote.CategoryCompute }

// Applicable requires a VM-shaped spec; pure code-execution requests carry
// no CPU count and are not priceable here.
func (a *Akash) Applicable(spec quote.Spec) bool {
	cs, ok := spec.(quote.ComputeSpec)
	return ok && cs.CPUCores > 0
}

type akashRequest struct {
	CPU     int64 `json:"cpu"`
	Memory  int64 `json:"memory"`
	Storage int64 `json:"storage"`
}

type akashResponse struct {
	Akash *float64 `json:"akash"`
	AWS   *float64 `json:"aws"`
	GCP   *float64 `json:"gcp"`
	Azure *float64 `json:"azure"`
}

// Quote fetches Akash monthly pricing for the given compute spec.
func (a *Akash) Quote(ctx context.Context, spec quote.Spec) (*quote.Quote, error) {
	cs, ok := spec.(quote.ComputeSpec)
	if !ok {
		return nil, fmt.Errorf("akash: unsupported spec %T", spec)
	}

	// CPU in millicores, memory and storage in decimal bytes.
	payload := akashRequest{
		CPU:     int64(cs.CPUCores * 1000),
		Memory:  int64(cs.MemoryGB * 1_000_000_000),
		Storage: int64(cs.StorageGB * 1_000_000_000),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if a.opts.UserAgent != "" {
		req.Header.Set("User-Agent", a.opts.UserAgent)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch akash pricing: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("akash pricing status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var pricing akashResponse
	if err := json.Unmarshal(raw, &pricing); err != nil {
		return nil, fmt.Errorf("decode akash pricing: %w", err)
	}

	frag := quote.Fragment{
		BillingPeriod: "month",
		Metadata: map[string]any{
			"spec": map[string]any{
				"cpu_cores":  cs.CPUCores,
				"memory_gb":  cs.MemoryGB,
				"storage_gb": cs.StorageGB,
			},
			"competitors": map[string]any{
				"aws":   pricing.AWS,
				"gcp":   pricing.GCP,
				"azure": pricing.Azure,
			},
		},
	}
	if pricing.Akash != nil {
		frag.PriceUSD = decimal.NewFromFloat(*pricing.Akash)
		frag.HasPrice = true
	}

	q := quote.Normalize(a.Name(), a.Category(), frag)
	return &q, nil
}

var _ Adapter = (*Akash)(nil)
