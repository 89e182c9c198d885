package x402

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Payment-gated upstreams quote amounts in the asset's smallest unit. The
// assets seen in the wild are USD-pegged 6-decimal stablecoins, so dividing
// by 1e6 yields the USD price.
const assetDecimals = 6

// Instructions carries the payment instructions extracted from the first
// acceptance option of a 402 challenge.
type Instructions struct {
	Scheme            string `json:"scheme"`
	Network           string `json:"network"`
	PayTo             string `json:"payTo"`
	Asset             string `json:"asset"`
	MaxAmountRequired string `json:"maxAmountRequired"`
	Description       string `json:"description,omitempty"`
}

// Result is one classified probe of an x402 endpoint. It lives for the
// duration of a single adapter call.
type Result struct {
	PriceUSD     decimal.Decimal
	Currency     string
	Network      string
	Recipient    string
	Free         bool
	Instructions *Instructions
	// Extra is the accepts[0].extra object, decoded generically, for
	// adapters that read provider-specific pricing hints out of it.
	Extra    map[string]any
	Metadata map[string]any
}

type acceptsEntry struct {
	Scheme            string         `json:"scheme"`
	Network           string         `json:"network"`
	PayTo             string         `json:"payTo"`
	Asset             string         `json:"asset"`
	MaxAmountRequired json.Number    `json:"maxAmountRequired"`
	Description       string         `json:"description"`
	Extra             map[string]any `json:"extra"`
}

type challengeBody struct {
	Accepts []acceptsEntry `json:"accepts"`
}

// Options tune the x402 client.
type Options struct {
	Timeout   time.Duration
	UserAgent string
}

// Client probes payment-gated endpoints and parses their 402 challenges.
type Client struct {
	opts   Options
	logger zerolog.Logger
	client *http.Client
}

// NewClient constructs an x402 client.
func NewClient(opts Options, logger zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		opts:   opts,
		logger: logger.With().Str("component", "x402_client").Logger(),
		client: &http.Client{Timeout: timeout},
	}
}

// Quote issues a probe request and classifies the response. A 402 status
// yields the parsed payment requirement; any other status means the resource
// demanded no payment and the price is zero. Network or parse failures
// return an error, which callers treat as "provider unavailable", never as a
// reason to abort sibling probes.
func (c *Client) Quote(ctx context.Context, method, url string, payload any) (*Result, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal probe payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create probe request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read probe response: %w", err)
	}

	if resp.StatusCode != http.StatusPaymentRequired {
		c.logger.Debug().Str("url", url).Int("status", resp.StatusCode).Msg("no payment demanded")
		return &Result{
			Free: true,
			Metadata: map[string]any{
				"status_code": resp.StatusCode,
				"note":        "no payment required",
			},
		}, nil
	}

	return c.parseChallenge(resp, raw)
}

func (c *Client) parseChallenge(resp *http.Response, raw []byte) (*Result, error) {
	var challenge challengeBody
	if err := json.Unmarshal(raw, &challenge); err != nil {
		return nil, fmt.Errorf("decode 402 challenge: %w", err)
	}

	var accepts acceptsEntry
	if len(challenge.Accepts) > 0 {
		accepts = challenge.Accepts[0]
	}

	price := decimal.Zero
	if accepts.MaxAmountRequired != "" {
		amount, err := decimal.NewFromString(accepts.MaxAmountRequired.String())
		if err != nil {
			return nil, fmt.Errorf("parse maxAmountRequired %q: %w", accepts.MaxAmountRequired, err)
		}
		price = amount.Shift(-assetDecimals)
	}

	// Headers carry the same payment fields on some upstreams and win over
	// the accepts entry when both are present.
	headerOr := func(key, fallback string) string {
		if v := resp.Header.Get(key); v != "" {
			return v
		}
		return fallback
	}

	result := &Result{
		PriceUSD:  price,
		Currency:  headerOr("asset", accepts.Asset),
		Network:   headerOr("network", accepts.Network),
		Recipient: headerOr("payTo", accepts.PayTo),
		Instructions: &Instructions{
			Scheme:            accepts.Scheme,
			Network:           accepts.Network,
			PayTo:             accepts.PayTo,
			Asset:             accepts.Asset,
			MaxAmountRequired: accepts.MaxAmountRequired.String(),
			Description:       accepts.Description,
		},
		Extra: accepts.Extra,
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		decoded = string(raw)
	}
	result.Metadata = map[string]any{
		"status_code": resp.StatusCode,
		"response":    decoded,
	}

	if result.Recipient != "" {
		if common.IsHexAddress(result.Recipient) {
			result.Recipient = common.HexToAddress(result.Recipient).Hex()
		} else {
			c.logger.Warn().Str("payTo", result.Recipient).Msg("recipient is not a valid EVM address")
			result.Metadata["recipient_unverified"] = true
		}
	}

	return result, nil
}
