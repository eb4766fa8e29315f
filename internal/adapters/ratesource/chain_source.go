package ratesource

import (
	"context"
	"errors"
	"strings"

	portssvc "github.com/SscSPs/finance_assistant/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// ChainSource asks each source in order and returns the first answer.
type ChainSource struct {
	sources []portssvc.LiveRateSource
}

// NewChainSource chains sources, skipping nil entries.
func NewChainSource(sources ...portssvc.LiveRateSource) *ChainSource {
	c := &ChainSource{}
	for _, s := range sources {
		if s != nil {
			c.sources = append(c.sources, s)
		}
	}
	return c
}

var _ portssvc.LiveRateSource = (*ChainSource)(nil)

func (c *ChainSource) Name() string {
	names := make([]string, len(c.sources))
	for i, s := range c.sources {
		names[i] = s.Name()
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

func (c *ChainSource) FetchRate(ctx context.Context, currency, reference string) (decimal.Decimal, error) {
	if len(c.sources) == 0 {
		return decimal.Zero, errors.New("no rate sources configured")
	}
	var errs []error
	for _, s := range c.sources {
		rate, err := s.FetchRate(ctx, currency, reference)
		if err == nil {
			return rate, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return decimal.Zero, errors.Join(errs...)
}
