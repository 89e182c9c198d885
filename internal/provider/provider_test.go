package provider

import (
	"testing"

	"github.com/galaksio/quote-engine/internal/quote"
)

func TestRegistryPreservesOrder(t *testing.T) {
	akash := NewAkash(AkashOptions{}, noopLogger())
	merit := NewMeritSystems(MeritSystemsOptions{}, testProbe(), noopLogger())
	arweave := NewArweave(ArweaveOptions{}, noopLogger())
	pinata := NewPinata(PinataOptions{}, testProbe(), noopLogger())

	r := NewRegistry(akash, merit, arweave, pinata)

	compute := r.For(quote.CategoryCompute)
	if len(compute) != 2 || compute[0].Name() != "akash" || compute[1].Name() != "merit-systems" {
		t.Fatalf("compute adapters out of order: %v", names(compute))
	}

	storage := r.For(quote.CategoryStorage)
	if len(storage) != 2 || storage[0].Name() != "arweave" || storage[1].Name() != "pinata" {
		t.Fatalf("storage adapters out of order: %v", names(storage))
	}
}

func TestRegistryFilterKeepsRegistrationOrder(t *testing.T) {
	arweave := NewArweave(ArweaveOptions{}, noopLogger())
	pinata := NewPinata(PinataOptions{}, testProbe(), noopLogger())
	openx := NewOpenX402(OpenX402Options{}, testProbe(), noopLogger())

	r := NewRegistry(arweave, pinata, openx)

	// The filter order must not influence the adapter order.
	filtered := r.For(quote.CategoryStorage, "openx402", "arweave")
	if len(filtered) != 2 || filtered[0].Name() != "arweave" || filtered[1].Name() != "openx402" {
		t.Fatalf("filtered adapters out of order: %v", names(filtered))
	}

	if got := r.For(quote.CategoryStorage, "unknown"); len(got) != 0 {
		t.Fatalf("unknown provider names must filter to nothing, got %v", names(got))
	}
}

func TestRegistryProviders(t *testing.T) {
	r := NewRegistry(
		NewAkash(AkashOptions{}, noopLogger()),
		NewArweave(ArweaveOptions{}, noopLogger()),
		NewXCache(XCacheOptions{}, testProbe(), noopLogger()),
	)

	providers := r.Providers()
	if len(providers[quote.CategoryCompute]) != 1 || providers[quote.CategoryCompute][0] != "akash" {
		t.Fatalf("unexpected compute providers: %v", providers[quote.CategoryCompute])
	}
	if len(providers[quote.CategoryCache]) != 1 || providers[quote.CategoryCache][0] != "xcache" {
		t.Fatalf("unexpected cache providers: %v", providers[quote.CategoryCache])
	}
}

func names(adapters []Adapter) []string {
	out := make([]string, len(adapters))
	for i, a := range adapters {
		out[i] = a.Name()
	}
	return out
}
