package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/galaksio/quote-engine/internal/engine"
	"github.com/galaksio/quote-engine/internal/export"
	"github.com/galaksio/quote-engine/internal/quote"
)

// QuoteOptions control one-shot comparison output.
type QuoteOptions struct {
	Providers []string
	Output    string
	CSVPath   string
	PNGPath   string
}

// Quote runs a single comparison and renders it to stdout, optionally
// writing CSV and PNG artifacts next to it.
func (a *App) Quote(ctx context.Context, spec quote.Spec, opts QuoteOptions) error {
	eng, closeCache := a.newEngine()
	defer closeCache()

	cmp, err := eng.Compare(ctx, spec, opts.Providers...)
	if err != nil {
		if errors.Is(err, engine.ErrNoQuotes) {
			fmt.Fprintln(os.Stdout, "no quotes available")
			return nil
		}
		return err
	}

	a.recordComparison(ctx, cmp)

	switch opts.Output {
	case "", "table":
		if err := export.Table(os.Stdout, cmp); err != nil {
			return err
		}
	case "json":
		encoded, err := export.JSON(cmp)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(encoded))
	case "markdown":
		fmt.Fprint(os.Stdout, export.Markdown(cmp))
	default:
		return fmt.Errorf("unknown output format %q (expected table, json or markdown)", opts.Output)
	}

	if opts.CSVPath != "" {
		if err := writeComparisonFile(opts.CSVPath, func(f *os.File) error {
			return export.CSV(f, cmp)
		}); err != nil {
			return err
		}
		a.Logger.Info().Str("path", opts.CSVPath).Msg("wrote CSV export")
	}

	if opts.PNGPath != "" {
		if err := writeComparisonFile(opts.PNGPath, func(f *os.File) error {
			return export.Chart(f, cmp)
		}); err != nil {
			return err
		}
		a.Logger.Info().Str("path", opts.PNGPath).Msg("wrote PNG chart")
	}

	return nil
}

// recordComparison appends to the history log when a database is
// configured. CLI comparisons are best-effort; failures only log.
func (a *App) recordComparison(ctx context.Context, cmp *engine.Comparison) {
	store, closeStore, err := a.openHistory(ctx)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("history store unavailable; comparison not recorded")
		return
	}
	if store == nil {
		return
	}
	defer closeStore()

	if _, err := store.InsertComparison(ctx, cmp); err != nil {
		a.Logger.Warn().Err(err).Msg("failed to record comparison history")
	}
}

func writeComparisonFile(path string, render func(*os.File) error) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return render(file)
}
