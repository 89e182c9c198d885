package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/galaksio/quote-engine/internal/provider"
	"github.com/galaksio/quote-engine/internal/quote"
)

// ErrNoQuotes signals that every adapter in a comparison failed or was
// excluded. It is the only provider-level condition that surfaces as a
// request-level failure.
var ErrNoQuotes = errors.New("no quotes available")

// ProviderError records one adapter's failure. The comparison proceeds
// without the provider; the error stays inspectable.
type ProviderError struct {
	Provider string `json:"provider"`
	Err      error  `json:"-"`
}

func (e ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e ProviderError) Unwrap() error { return e.Err }

// MarshalJSON renders the wrapped error as text so comparisons stay
// serializable.
func (e ProviderError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Provider string `json:"provider"`
		Message  string `json:"error"`
	}{e.Provider, e.Err.Error()})
}

// Comparison is the result of ranking one spec across providers. Quotes are
// sorted ascending by price; ties keep adapter-invocation order.
type Comparison struct {
	Spec           any             `json:"spec"`
	Quotes         []quote.Quote   `json:"quotes"`
	BestOffer      quote.Quote     `json:"best_offer"`
	TotalProviders int             `json:"total_providers"`
	Timestamp      time.Time       `json:"timestamp"`
	Errors         []ProviderError `json:"errors,omitempty"`
}

// Options tune the engine.
type Options struct {
	// AdapterTimeout bounds each upstream call so one slow provider cannot
	// stall the whole comparison.
	AdapterTimeout time.Duration
	// CacheTTL applies when a result cache is injected.
	CacheTTL time.Duration
}

// ResultCache is an optional collaborator caching whole comparisons by
// spec digest. The engine works without one; nothing is cached by default.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// Engine fans a resource specification out to the applicable provider
// adapters and reduces the responses to a ranked comparison.
type Engine struct {
	registry *provider.Registry
	cache    ResultCache
	opts     Options
	logger   zerolog.Logger
}

// New constructs an Engine. cache may be nil.
func New(registry *provider.Registry, cache ResultCache, opts Options, logger zerolog.Logger) *Engine {
	if opts.AdapterTimeout <= 0 {
		opts.AdapterTimeout = 15 * time.Second
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}

	return &Engine{
		registry: registry,
		cache:    cache,
		opts:     opts,
		logger:   logger.With().Str("component", "quote_engine").Logger(),
	}
}

// Providers exposes the configured provider names per category.
func (e *Engine) Providers() map[quote.Category][]string {
	return e.registry.Providers()
}

// GetQuotes invokes each applicable adapter for the spec's category,
// optionally filtered to a provider subset, and returns the surviving
// normalized quotes in adapter-invocation order. Adapters run concurrently;
// results are slotted by fixed index so completion order never leaks into
// the output. Quotes without a usable USD price are dropped here, not in
// the normalizer.
func (e *Engine) GetQuotes(ctx context.Context, spec quote.Spec, providers ...string) ([]quote.Quote, []ProviderError) {
	adapters := e.registry.For(spec.Category(), providers...)

	results := make([]*quote.Quote, len(adapters))
	failures := make([]error, len(adapters))

	var g errgroup.Group
	for i, a := range adapters {
		if !a.Applicable(spec) {
			continue
		}
		i, a := i, a
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, e.opts.AdapterTimeout)
			defer cancel()

			q, err := a.Quote(callCtx, spec)
			if err != nil {
				failures[i] = err
				return nil
			}
			results[i] = q
			return nil
		})
	}
	_ = g.Wait()

	var quotes []quote.Quote
	var errs []ProviderError
	for i, a := range adapters {
		if err := failures[i]; err != nil {
			e.logger.Debug().Err(err).Str("provider", a.Name()).Msg("adapter excluded from comparison")
			errs = append(errs, ProviderError{Provider: a.Name(), Err: err})
			continue
		}
		q := results[i]
		if q == nil {
			continue
		}
		if !q.Priced() {
			e.logger.Debug().Str("provider", a.Name()).Msg("quote dropped: no usable USD price")
			continue
		}
		quotes = append(quotes, *q)
	}

	return quotes, errs
}

// Compare ranks the spec across providers and picks the best offer. It
// fails with ErrNoQuotes when the provider set yields nothing usable.
func (e *Engine) Compare(ctx context.Context, spec quote.Spec, providers ...string) (*Comparison, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	if cached, ok := e.cachedComparison(ctx, spec, providers); ok {
		return cached, nil
	}

	quotes, errs := e.GetQuotes(ctx, spec, providers...)
	if len(quotes) == 0 {
		return nil, ErrNoQuotes
	}

	// Stable sort: equal prices keep adapter-invocation order.
	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].PriceUSD.Decimal.LessThan(quotes[j].PriceUSD.Decimal)
	})

	cmp := &Comparison{
		Spec:           spec,
		Quotes:         quotes,
		BestOffer:      quotes[0],
		TotalProviders: len(quotes),
		Timestamp:      time.Now().UTC(),
		Errors:         errs,
	}

	e.storeComparison(ctx, spec, providers, cmp)
	return cmp, nil
}

// BestOffer runs GetQuotes for every supplied spec and returns the single
// minimum-price quote across the union, or nil when no spec was supplied or
// every category came back empty.
func (e *Engine) BestOffer(ctx context.Context, specs ...quote.Spec) (*quote.Quote, error) {
	var all []quote.Quote
	for _, spec := range specs {
		if spec == nil {
			continue
		}
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		quotes, _ := e.GetQuotes(ctx, spec)
		all = append(all, quotes...)
	}

	if len(all) == 0 {
		return nil, nil
	}

	best := all[0]
	for _, q := range all[1:] {
		if q.PriceUSD.Decimal.LessThan(best.PriceUSD.Decimal) {
			best = q
		}
	}
	return &best, nil
}
