package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/galaksio/quote-engine/internal/quote"
)

var bestCategories []string

var bestCmd = &cobra.Command{
	Use:   "best",
	Short: "Find the cheapest quote across categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(bestCategories) == 0 {
			bestCategories = []string{"compute", "storage", "cache"}
		}

		var specs []quote.Spec
		for _, category := range bestCategories {
			switch quote.Category(category) {
			case quote.CategoryCompute:
				specs = append(specs, quote.ComputeSpec{CPUCores: 1, MemoryGB: 1, StorageGB: 1})
			case quote.CategoryStorage:
				specs = append(specs, quote.StorageSpec{SizeGB: 1})
			case quote.CategoryCache:
				specs = append(specs, quote.CacheSpec{SizeMB: 100, Operation: quote.OperationCreate})
			default:
				return fmt.Errorf("unknown category %q (expected compute, storage or cache)", category)
			}
		}

		return getApp().Best(cmd.Context(), specs...)
	},
}

func init() {
	bestCmd.Flags().StringSliceVar(&bestCategories, "categories", nil, "Categories to search (defaults to all)")
}
