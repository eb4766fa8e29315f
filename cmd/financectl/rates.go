package main

import (
	"fmt"
	"sync"

	"github.com/SscSPs/finance_assistant/internal/core/domain"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Inspect and refresh cached exchange rates",
}

var ratesRefreshCmd = &cobra.Command{
	Use:   "refresh [currency...]",
	Short: "Fetch live rates and store them in the cache",
	Long: `Fetch the live rate of each currency against the reference currency and
store it. Without arguments the secondary reference currency is refreshed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reference, _ := cmd.Flags().GetString("reference")
		if reference == "" {
			reference = cfg.ReferenceCurrency
		}
		if len(args) == 0 {
			args = []string{cfg.SecondaryReferenceCurrency}
		}

		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, false)
		if err != nil {
			return err
		}
		defer a.close()

		var mu sync.Mutex
		lines := make([]string, len(args))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(4)
		for i, raw := range args {
			g.Go(func() error {
				code, err := domain.NormalizeCurrencyCode(raw)
				if err != nil {
					return err
				}
				quote, err := a.services.ExchangeRate.RefreshRate(gctx, code, reference)
				if err != nil {
					return fmt.Errorf("%s: %w", code, err)
				}
				mu.Lock()
				lines[i] = fmt.Sprintf("1 %s = %s %s", quote.From, quote.Rate, quote.To)
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		for _, line := range lines {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}

var ratesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached exchange rates",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		defer a.close()

		rates, err := a.services.ExchangeRate.ListRates(cmd.Context())
		if err != nil {
			return err
		}
		for _, r := range rates {
			fmt.Fprintf(cmd.OutOrStdout(), "%s/%s\t%s\t%s\t%s\n",
				r.FromCurrencyCode, r.ToCurrencyCode, r.Rate, r.Source, r.LastUpdatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	ratesRefreshCmd.Flags().String("reference", "", "currency to quote against (default REFERENCE_CURRENCY)")
	ratesCmd.AddCommand(ratesRefreshCmd)
	ratesCmd.AddCommand(ratesListCmd)
}
