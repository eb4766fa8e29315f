package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/finance_assistant/internal/core/domain"
	"github.com/SscSPs/finance_assistant/internal/dto"
)

func normalizePair(from, to string) (string, string, error) {
	f, err := domain.NormalizeCurrencyCode(from)
	if err != nil {
		return "", "", err
	}
	t, err := domain.NormalizeCurrencyCode(to)
	if err != nil {
		return "", "", err
	}
	return f, t, nil
}

// SetExchangeRate stores a manual rate: one unit of from is worth rate units of to.
func (t *Toolkit) SetExchangeRate(ctx context.Context, from, to, rate string) dto.Result[dto.ExchangeRateResponse] {
	return run(ctx, "update_exchange_rate", func(ctx context.Context) (dto.ExchangeRateResponse, string, error) {
		f, tc, err := normalizePair(from, to)
		if err != nil {
			return dto.ExchangeRateResponse{}, "", err
		}
		value, err := parseAmount(rate)
		if err != nil {
			return dto.ExchangeRateResponse{}, "", err
		}
		stored, err := t.services.ExchangeRate.SetRate(ctx, dto.SetExchangeRateRequest{FromCurrencyCode: f, ToCurrencyCode: tc, Rate: value}, t.userID)
		if err != nil {
			return dto.ExchangeRateResponse{}, "", err
		}
		return dto.ToExchangeRateResponse(stored), fmt.Sprintf("1 %s = %s %s", f, stored.Rate, tc), nil
	})
}

// GetExchangeRate quotes the current rate, live first and cached otherwise.
func (t *Toolkit) GetExchangeRate(ctx context.Context, from, to string) dto.Result[dto.RateQuoteResponse] {
	return run(ctx, "get_exchange_rate", func(ctx context.Context) (dto.RateQuoteResponse, string, error) {
		f, tc, err := normalizePair(from, to)
		if err != nil {
			return dto.RateQuoteResponse{}, "", err
		}
		quote, err := t.services.ExchangeRate.Rate(ctx, f, tc, t.clock())
		if err != nil {
			return dto.RateQuoteResponse{}, "", err
		}
		return dto.ToRateQuoteResponse(*quote), fmt.Sprintf("1 %s = %s %s (%s)", f, quote.Rate, tc, strings.ToLower(string(quote.Source))), nil
	})
}

// RefreshExchangeRate forces a live lookup and stores it.
func (t *Toolkit) RefreshExchangeRate(ctx context.Context, from, to string) dto.Result[dto.RateQuoteResponse] {
	return run(ctx, "save_exchange_rate_from_api", func(ctx context.Context) (dto.RateQuoteResponse, string, error) {
		f, tc, err := normalizePair(from, to)
		if err != nil {
			return dto.RateQuoteResponse{}, "", err
		}
		quote, err := t.services.ExchangeRate.RefreshRate(ctx, f, tc)
		if err != nil {
			return dto.RateQuoteResponse{}, "", err
		}
		return dto.ToRateQuoteResponse(*quote), fmt.Sprintf("Stored 1 %s = %s %s", f, quote.Rate, tc), nil
	})
}

// Convert prices an amount of one currency in another.
func (t *Toolkit) Convert(ctx context.Context, amount, from, to string) dto.Result[dto.ConversionResponse] {
	return run(ctx, "convert", func(ctx context.Context) (dto.ConversionResponse, string, error) {
		f, tc, err := normalizePair(from, to)
		if err != nil {
			return dto.ConversionResponse{}, "", err
		}
		value, err := parseAmount(amount)
		if err != nil {
			return dto.ConversionResponse{}, "", err
		}
		conversion, err := t.services.ExchangeRate.Convert(ctx, value, f, tc)
		if err != nil {
			return dto.ConversionResponse{}, "", err
		}
		out := dto.ToConversionResponse(conversion)
		return out, out.FormattedAmount + " = " + out.FormattedConverted, nil
	})
}

// Summary reports the ledger in two reference currencies. Empty references
// default to the ledger's own and the configured secondary one.
func (t *Toolkit) Summary(ctx context.Context, ledgerID, referenceA, referenceB string) dto.Result[dto.SummaryResponse] {
	return run(ctx, "get_summary", func(ctx context.Context) (dto.SummaryResponse, string, error) {
		var err error
		if referenceB == "" {
			referenceB = t.secondaryReference
		}
		if referenceA != "" {
			if referenceA, err = domain.NormalizeCurrencyCode(referenceA); err != nil {
				return dto.SummaryResponse{}, "", err
			}
		}
		if referenceB != "" {
			if referenceB, err = domain.NormalizeCurrencyCode(referenceB); err != nil {
				return dto.SummaryResponse{}, "", err
			}
		}
		summary, err := t.services.Reporting.Summarize(ctx, ledgerID, referenceA, referenceB, t.userID)
		if err != nil {
			return dto.SummaryResponse{}, "", err
		}
		out := dto.ToSummaryResponse(summary)
		parts := make([]string, len(out.References))
		for i, r := range out.References {
			parts[i] = r.Formatted
		}
		msg := "Total: " + strings.Join(parts, " / ")
		if summary.Partial {
			msg += " (partial: " + strings.Join(summary.Warnings, "; ") + ")"
		}
		return out, msg, nil
	})
}
