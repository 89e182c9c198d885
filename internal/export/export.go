// Package export renders comparison results. It formats only; quote
// ordering is never altered.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/galaksio/quote-engine/internal/engine"
)

// JSON renders the comparison as indented JSON, identical to the in-memory
// result.
func JSON(cmp *engine.Comparison) ([]byte, error) {
	return json.MarshalIndent(cmp, "", "  ")
}

// Table writes a tabular text form: the spec fields first, then one row per
// quote with provider, fixed 2-decimal USD price, and billing period.
func Table(w io.Writer, cmp *engine.Comparison) error {
	for _, field := range specFields(cmp.Spec) {
		fmt.Fprintf(w, "%s: %v\n", field.name, field.value)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Provider\tPrice (USD)\tBilling Period")
	for _, q := range cmp.Quotes {
		fmt.Fprintf(tw, "%s\t$%s\t%s\n", q.Provider, q.PriceUSD.Decimal.StringFixed(2), q.BillingPeriod)
	}
	return tw.Flush()
}

// Markdown renders the comparison as a Markdown document with a spec listing
// and a quote table.
func Markdown(cmp *engine.Comparison) string {
	var b strings.Builder
	b.WriteString("# Cloud Pricing Comparison\n\n")

	b.WriteString("## Specification\n")
	for _, field := range specFields(cmp.Spec) {
		fmt.Fprintf(&b, "- **%s**: %v\n", field.name, field.value)
	}
	b.WriteString("\n## Quotes\n\n")

	b.WriteString("| Provider | Price (USD) | Billing Period |\n")
	b.WriteString("|----------|-------------|----------------|\n")
	for _, q := range cmp.Quotes {
		fmt.Fprintf(&b, "| %s | $%s | %s |\n", q.Provider, q.PriceUSD.Decimal.StringFixed(2), q.BillingPeriod)
	}

	return b.String()
}

// CSV writes one record per quote.
func CSV(w io.Writer, cmp *engine.Comparison) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"provider", "category", "price_usd", "currency", "billing_period", "timestamp"}); err != nil {
		return err
	}

	for _, q := range cmp.Quotes {
		record := []string{
			q.Provider,
			string(q.Category),
			q.PriceUSD.Decimal.String(),
			q.Currency,
			q.BillingPeriod,
			q.Timestamp.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

type field struct {
	name  string
	value any
}

// specFields flattens the spec into name/value pairs with deterministic
// ordering.
func specFields(spec any) []field {
	encoded, err := json.Marshal(spec)
	if err != nil {
		return nil
	}

	var decoded map[string]any
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		return nil
	}

	names := make([]string, 0, len(decoded))
	for name := range decoded {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]field, 0, len(names))
	for _, name := range names {
		fields = append(fields, field{name: name, value: decoded[name]})
	}
	return fields
}
