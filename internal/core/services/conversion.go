package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/finance_assistant/internal/core/domain"
	portssvc "github.com/SscSPs/finance_assistant/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// referenceConverter prices amounts in one reference currency, asking the
// rate provider at most once per source currency.
type referenceConverter struct {
	rates     portssvc.RateProvider
	reference string
	at        time.Time
	quotes    map[string]*domain.RateQuote
}

func newReferenceConverter(rates portssvc.RateProvider, reference string, at time.Time, known ...domain.RateQuote) *referenceConverter {
	c := &referenceConverter{rates: rates, reference: reference, at: at, quotes: map[string]*domain.RateQuote{}}
	for i := range known {
		if known[i].To == reference {
			c.quotes[known[i].From] = &known[i]
		}
	}
	return c
}

// convert returns amount of code in the reference currency, rounded to domain.ReferenceScale.
func (c *referenceConverter) convert(ctx context.Context, code string, amount decimal.Decimal) (decimal.Decimal, error) {
	q, ok := c.quotes[code]
	if !ok {
		var err error
		q, err = c.rates.Rate(ctx, code, c.reference, c.at)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to price %s in %s: %w", code, c.reference, err)
		}
		c.quotes[code] = q
	}
	return q.Convert(amount), nil
}

// sum converts every non-zero amount and adds the rounded results.
func (c *referenceConverter) sum(ctx context.Context, amounts map[string]decimal.Decimal) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, code := range sortedCodes(amounts) {
		if amounts[code].IsZero() {
			continue
		}
		v, err := c.convert(ctx, code, amounts[code])
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(v)
	}
	return total, nil
}
