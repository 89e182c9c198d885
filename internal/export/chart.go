package export

import (
	"io"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/galaksio/quote-engine/internal/engine"
)

// Chart renders the comparison as a PNG bar chart, one bar per provider in
// quote order.
func Chart(w io.Writer, cmp *engine.Comparison) error {
	bars := make([]chart.Value, 0, len(cmp.Quotes))
	for _, q := range cmp.Quotes {
		bars = append(bars, chart.Value{
			Label: q.Provider,
			Value: q.PriceUSD.Decimal.InexactFloat64(),
		})
	}

	graph := chart.BarChart{
		Title:    "Provider pricing (USD)",
		Width:    1024,
		Height:   576,
		BarWidth: 60,
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return chart.FloatValueFormatterWithFormat(v, "$%.2f")
			},
		},
		Bars: bars,
	}

	return graph.Render(chart.PNG, w)
}
