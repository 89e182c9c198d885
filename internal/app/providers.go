package app

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/galaksio/quote-engine/internal/quote"
)

// Providers lists every registered adapter grouped by category.
func (a *App) Providers() error {
	byCategory := a.newRegistry().Providers()

	categories := make([]quote.Category, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Category\tProvider")
	for _, category := range categories {
		for _, name := range byCategory[category] {
			fmt.Fprintf(writer, "%s\t%s\n", category, name)
		}
	}
	return writer.Flush()
}
