package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/galaksio/quote-engine/internal/quote"
)

// cacheKey digests the spec (and any provider filter) into a stable key:
// category plus the SHA-256 of the canonical JSON encoding.
func cacheKey(spec quote.Spec, providers []string) (string, error) {
	encoded, err := json.Marshal(spec)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write(encoded)
	if len(providers) > 0 {
		h.Write([]byte(strings.Join(providers, ",")))
	}
	return fmt.Sprintf("quote:%s:%s", spec.Category(), hex.EncodeToString(h.Sum(nil))), nil
}

func (e *Engine) cachedComparison(ctx context.Context, spec quote.Spec, providers []string) (*Comparison, bool) {
	if e.cache == nil {
		return nil, false
	}

	key, err := cacheKey(spec, providers)
	if err != nil {
		return nil, false
	}

	raw, ok := e.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}

	var cmp Comparison
	if err := json.Unmarshal(raw, &cmp); err != nil {
		e.logger.Warn().Err(err).Str("key", key).Msg("discarding undecodable cached comparison")
		return nil, false
	}

	e.logger.Debug().Str("key", key).Msg("comparison served from cache")
	return &cmp, true
}

func (e *Engine) storeComparison(ctx context.Context, spec quote.Spec, providers []string, cmp *Comparison) {
	if e.cache == nil {
		return
	}

	key, err := cacheKey(spec, providers)
	if err != nil {
		return
	}

	encoded, err := json.Marshal(cmp)
	if err != nil {
		return
	}

	e.cache.Set(ctx, key, encoded, e.opts.CacheTTL)
}
