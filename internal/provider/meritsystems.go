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

// MeritSystemsOptions parameterise the Merit Systems execution adapter.
type MeritSystemsOptions struct {
	BaseURL string
	Timeout time.Duration
}

// MeritSystems quotes sandboxed code execution. The endpoint is payment
// gated; a minimal snippet probe triggers the 402 challenge carrying the
// per-execution price.
type MeritSystems struct {
	opts    MeritSystemsOptions
	logger  zerolog.Logger
	probe   *x402.Client
	baseURL string
}

// NewMeritSystems constructs the Merit Systems adapter.
func NewMeritSystems(opts MeritSystemsOptions, probe *x402.Client, logger zerolog.Logger) *MeritSystems {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.merit.systems/v1/execute"
	}

	return &MeritSystems{
		opts:    opts,
		logger:  logger.With().Str("component", "merit_adapter").Logger(),
		probe:   probe,
		baseURL: baseURL,
	}
}

func (m *MeritSystems) Name() string             { return "merit-systems" }
func (m *MeritSystems) Category() quote.Category { return quote.CategoryCompute }

func (m *MeritSystems) Applicable(spec quote.Spec) bool {
	_, ok := spec.(quote.ComputeSpec)
	return ok
}

// Quote probes the execution endpoint for the per-run price.
func (m *MeritSystems) Quote(ctx context.Context, spec quote.Spec) (*quote.Quote, error) {
	cs, ok := spec.(quote.ComputeSpec)
	if !ok {
		return nil, fmt.Errorf("merit-systems: unsupported spec %T", spec)
	}

	language := cs.Language
	if language == "" {
		language = "python"
	}

	payload := map[string]string{
		"snippet":  "# pricing probe",
		"language": language,
	}

	result, err := m.probe.Quote(ctx, "POST", m.baseURL, payload)
	if err != nil {
		return nil, err
	}

	frag := quote.Fragment{
		PriceUSD: result.PriceUSD,
		HasPrice: true,
		Currency: result.Currency,
		Metadata: map[string]any{
			"code_size_bytes": cs.CodeSizeBytes,
			"language":        language,
			"operation":       "execute",
			"network":         result.Network,
			"recipient":       result.Recipient,
		},
	}
	if frag.Currency == "" {
		frag.Currency = "USDC"
	}
	attachX402(&frag, result)

	q := quote.Normalize(m.Name(), m.Category(), frag)
	return &q, nil
}

var _ Adapter = (*MeritSystems)(nil)
