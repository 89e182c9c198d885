package cli

import (
	"github.com/spf13/cobra"

	"github.com/galaksio/quote-engine/internal/app"
	"github.com/galaksio/quote-engine/internal/quote"
)

var (
	quoteProviders []string
	quoteOutput    string
	quoteCSVPath   string
	quotePNGPath   string

	computeCPUCores  float64
	computeMemoryGB  float64
	computeStorageGB float64
	computeGPU       string

	storageSizeGB    float64
	storageDuration  int
	storagePermanent bool

	cacheSizeMB    float64
	cacheOperation string
	cacheTTLHours  int
	cacheRegion    string
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Compare provider pricing for one resource specification",
}

var quoteComputeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compare compute pricing",
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := quote.ComputeSpec{
			CPUCores:  computeCPUCores,
			MemoryGB:  computeMemoryGB,
			StorageGB: computeStorageGB,
			GPU:       computeGPU,
		}
		return getApp().Quote(cmd.Context(), spec, quoteOptions())
	},
}

var quoteStorageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Compare storage pricing",
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := quote.StorageSpec{
			SizeGB:       storageSizeGB,
			DurationDays: storageDuration,
			Permanent:    storagePermanent,
		}
		return getApp().Quote(cmd.Context(), spec, quoteOptions())
	},
}

var quoteCacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Compare cache pricing",
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := quote.CacheSpec{
			SizeMB:    cacheSizeMB,
			Operation: quote.CacheOperation(cacheOperation),
			TTLHours:  cacheTTLHours,
			Region:    cacheRegion,
		}
		return getApp().Quote(cmd.Context(), spec, quoteOptions())
	},
}

func quoteOptions() app.QuoteOptions {
	return app.QuoteOptions{
		Providers: quoteProviders,
		Output:    quoteOutput,
		CSVPath:   quoteCSVPath,
		PNGPath:   quotePNGPath,
	}
}

func init() {
	quoteCmd.PersistentFlags().StringSliceVar(&quoteProviders, "providers", nil, "Restrict comparison to these providers")
	quoteCmd.PersistentFlags().StringVar(&quoteOutput, "output", "table", "Output format: table, json or markdown")
	quoteCmd.PersistentFlags().StringVar(&quoteCSVPath, "csv", "", "Path to write CSV export")
	quoteCmd.PersistentFlags().StringVar(&quotePNGPath, "png", "", "Path to write PNG price chart")

	quoteComputeCmd.Flags().Float64Var(&computeCPUCores, "cpu", 1, "CPU cores")
	quoteComputeCmd.Flags().Float64Var(&computeMemoryGB, "memory", 1, "Memory in GB")
	quoteComputeCmd.Flags().Float64Var(&computeStorageGB, "storage", 1, "Ephemeral storage in GB")
	quoteComputeCmd.Flags().StringVar(&computeGPU, "gpu", "", "GPU model")

	quoteStorageCmd.Flags().Float64Var(&storageSizeGB, "size", 1, "Size in GB")
	quoteStorageCmd.Flags().IntVar(&storageDuration, "duration", 0, "Retention in days (0 for provider default)")
	quoteStorageCmd.Flags().BoolVar(&storagePermanent, "permanent", false, "Request permanent storage")

	quoteCacheCmd.Flags().Float64Var(&cacheSizeMB, "size", 100, "Cache size in MB")
	quoteCacheCmd.Flags().StringVar(&cacheOperation, "operation", string(quote.OperationCreate), "Cache operation")
	quoteCacheCmd.Flags().IntVar(&cacheTTLHours, "ttl", 0, "Entry TTL in hours")
	quoteCacheCmd.Flags().StringVar(&cacheRegion, "region", "", "Preferred region")

	quoteCmd.AddCommand(quoteComputeCmd)
	quoteCmd.AddCommand(quoteStorageCmd)
	quoteCmd.AddCommand(quoteCacheCmd)
}
