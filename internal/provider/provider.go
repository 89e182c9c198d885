package provider

import (
	"context"
	"fmt"

	"github.com/galaksio/quote-engine/internal/quote"
	"github.com/galaksio/quote-engine/internal/x402"
)

// Adapter translates one upstream pricing protocol into a quote. An adapter
// returns (nil, nil) when it has nothing to offer for the spec, a quote on
// success, and an error only for conditions worth surfacing to the caller
// (upstream unavailable, size limits, malformed responses). Errors never
// abort sibling adapters.
type Adapter interface {
	Name() string
	Category() quote.Category
	Applicable(spec quote.Spec) bool
	Quote(ctx context.Context, spec quote.Spec) (*quote.Quote, error)
}

// SizeLimitError reports a request that exceeds a provider's hard ceiling.
// It is produced before any network call is made.
type SizeLimitError struct {
	Provider       string
	RequestedBytes int64
	MaxBytes       int64
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("%s: requested size %.2fMB exceeds maximum %.2fMB",
		e.Provider, float64(e.RequestedBytes)/1_000_000, float64(e.MaxBytes)/1_000_000)
}

// attachX402 copies the shared x402 probe outcome into an adapter fragment:
// the free flag, the payment instructions, and the probe metadata
// (status code plus decoded challenge body).
func attachX402(frag *quote.Fragment, result *x402.Result) {
	if result.Free {
		frag.Metadata["free"] = true
	}
	if result.Instructions != nil {
		frag.Metadata["x402_instructions"] = result.Instructions
	}
	for k, v := range result.Metadata {
		frag.Metadata[k] = v
	}
}

// Registry maps each category to its ordered adapter list. The order is
// fixed at construction and defines the tie-break order for equally priced
// quotes; it is read-only after initialization.
type Registry struct {
	byCategory map[quote.Category][]Adapter
	order      []quote.Category
}

// NewRegistry builds a registry preserving the given adapter order within
// each category.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{byCategory: make(map[quote.Category][]Adapter)}
	for _, a := range adapters {
		cat := a.Category()
		if _, ok := r.byCategory[cat]; !ok {
			r.order = append(r.order, cat)
		}
		r.byCategory[cat] = append(r.byCategory[cat], a)
	}
	return r
}

// For returns the adapters for a category, optionally filtered to a subset
// of provider names. Order is always the registration order, regardless of
// the order names are given in.
func (r *Registry) For(cat quote.Category, names ...string) []Adapter {
	all := r.byCategory[cat]
	if len(names) == 0 {
		return all
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	var out []Adapter
	for _, a := range all {
		if wanted[a.Name()] {
			out = append(out, a)
		}
	}
	return out
}

// Providers lists registered provider names per category, in registration
// order.
func (r *Registry) Providers() map[quote.Category][]string {
	out := make(map[quote.Category][]string, len(r.byCategory))
	for _, cat := range r.order {
		for _, a := range r.byCategory[cat] {
			out[cat] = append(out[cat], a.Name())
		}
	}
	return out
}
