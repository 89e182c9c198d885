package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/galaksio/quote-engine/internal/quote"
)

// Best finds the cheapest quote across the given specs and prints it as JSON.
func (a *App) Best(ctx context.Context, specs ...quote.Spec) error {
	eng, closeCache := a.newEngine()
	defer closeCache()

	best, err := eng.BestOffer(ctx, specs...)
	if err != nil {
		return err
	}
	if best == nil {
		fmt.Fprintln(os.Stdout, "no quotes available")
		return nil
	}

	encoded, err := json.MarshalIndent(best, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(encoded))
	return nil
}
