// Package ratesource contains the live exchange rate sources.
package ratesource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	portssvc "github.com/SscSPs/finance_assistant/internal/core/ports/services"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// DefaultTimeout bounds a single HTTP lookup.
const DefaultTimeout = 10 * time.Second

// latestResponse is the body of GET {baseURL}/{reference}: units of each
// currency per one unit of the reference currency.
type latestResponse struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// HTTPSource quotes rates from an exchangerate-api compatible endpoint.
type HTTPSource struct {
	baseURL string
	client  *http.Client
	group   singleflight.Group
}

// NewHTTPSource returns a source querying baseURL. A zero timeout uses DefaultTimeout.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

var _ portssvc.LiveRateSource = (*HTTPSource)(nil)

func (s *HTTPSource) Name() string { return "exchangerate-api" }

// FetchRate returns how many units of reference one unit of currency buys.
// Concurrent lookups against the same reference share one request. The shared
// request is bounded by the client timeout only; each caller stops waiting
// when its own ctx ends.
func (s *HTTPSource) FetchRate(ctx context.Context, currency, reference string) (decimal.Decimal, error) {
	currency, reference = strings.ToUpper(currency), strings.ToUpper(reference)

	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(reference, func() (any, error) {
		return s.latest(shared, reference)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return decimal.Zero, fmt.Errorf("%s: %w", s.Name(), ctx.Err())
	case res = <-ch:
	}
	if res.Err != nil {
		return decimal.Zero, res.Err
	}
	rates := res.Val.(map[string]decimal.Decimal)

	units, ok := rates[currency]
	if !ok {
		return decimal.Zero, fmt.Errorf("%s: no rate for %s against %s", s.Name(), currency, reference)
	}
	if !units.IsPositive() {
		return decimal.Zero, fmt.Errorf("%s: non-positive rate %s for %s", s.Name(), units, currency)
	}
	return decimal.NewFromInt(1).Div(units), nil
}

func (s *HTTPSource) latest(ctx context.Context, reference string) (map[string]decimal.Decimal, error) {
	addr := s.baseURL + "/" + reference
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot http GET %v: %w", addr, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}

	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding %v: %w", addr, err)
	}
	if len(body.Rates) == 0 {
		return nil, fmt.Errorf("%v returned no rates", addr)
	}
	return body.Rates, nil
}
