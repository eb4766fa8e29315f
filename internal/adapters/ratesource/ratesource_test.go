package ratesource_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/finance_assistant/internal/adapters/ratesource"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRateServer(t *testing.T, hits *int32, delay time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		time.Sleep(delay)
		if r.URL.Path != "/USD" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"USD","rates":{"USD":1,"ARS":1250,"EUR":0.8}}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPSource_FetchRate(t *testing.T) {
	srv := newRateServer(t, nil, 0)
	src := ratesource.NewHTTPSource(srv.URL+"/", time.Second)

	rate, err := src.FetchRate(context.Background(), "ars", "usd")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.0008").Equal(rate), "got %s", rate)

	rate, err = src.FetchRate(context.Background(), "EUR", "USD")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1.25").Equal(rate), "got %s", rate)

	_, err = src.FetchRate(context.Background(), "JPY", "USD")
	assert.ErrorContains(t, err, "no rate for JPY")

	_, err = src.FetchRate(context.Background(), "USD", "EUR")
	assert.ErrorContains(t, err, "404")
}

func TestHTTPSource_Timeout(t *testing.T) {
	srv := newRateServer(t, nil, 200*time.Millisecond)
	src := ratesource.NewHTTPSource(srv.URL, 20*time.Millisecond)

	_, err := src.FetchRate(context.Background(), "ARS", "USD")
	assert.Error(t, err)
}

func TestHTTPSource_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rates":`))
	}))
	defer srv.Close()

	_, err := ratesource.NewHTTPSource(srv.URL, time.Second).FetchRate(context.Background(), "ARS", "USD")
	assert.ErrorContains(t, err, "decoding")
}

func TestHTTPSource_CollapsesConcurrentLookups(t *testing.T) {
	var hits int32
	srv := newRateServer(t, &hits, 100*time.Millisecond)
	src := ratesource.NewHTTPSource(srv.URL, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := src.FetchRate(context.Background(), "ARS", "USD")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Less(t, atomic.LoadInt32(&hits), int32(10))
}

func TestHTTPSource_CancelledCallerDoesNotFailSharedLookup(t *testing.T) {
	var hits int32
	arrived := make(chan struct{}, 1)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		arrived <- struct{}{}
		<-release
		_, _ = w.Write([]byte(`{"base":"USD","rates":{"ARS":1250}}`))
	}))
	defer srv.Close()
	src := ratesource.NewHTTPSource(srv.URL, 5*time.Second)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := src.FetchRate(firstCtx, "ARS", "USD")
		firstErr <- err
	}()
	<-arrived

	type result struct {
		rate decimal.Decimal
		err  error
	}
	second := make(chan result, 1)
	go func() {
		rate, err := src.FetchRate(context.Background(), "ARS", "USD")
		second <- result{rate, err}
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	got := <-second
	require.NoError(t, got.err)
	assert.True(t, decimal.RequireFromString("0.0008").Equal(got.rate), "got %s", got.rate)
	assert.LessOrEqual(t, atomic.LoadInt32(&hits), int32(2))
}

func TestParseFixedRates(t *testing.T) {
	table, err := ratesource.ParseFixedRates(" ars=1362.33, BOB=6.91 ,")
	require.NoError(t, err)
	assert.Len(t, table, 2)
	assert.True(t, decimal.RequireFromString("6.91").Equal(table["BOB"]))

	empty, err := ratesource.ParseFixedRates("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, bad := range []string{"ARS", "ARS=abc", "ARS=0", "ARS=-1"} {
		_, err := ratesource.ParseFixedRates(bad)
		assert.Error(t, err, bad)
	}
}

func TestFixedSource(t *testing.T) {
	src := ratesource.NewFixedSource("usd", map[string]decimal.Decimal{"bob": decimal.RequireFromString("6.91")})

	rate, err := src.FetchRate(context.Background(), "USD", "BOB")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("6.91").Equal(rate))

	rate, err = src.FetchRate(context.Background(), "BOB", "USD")
	require.NoError(t, err)
	assert.True(t, rate.Mul(decimal.RequireFromString("6.91")).Round(8).Equal(decimal.NewFromInt(1)))

	_, err = src.FetchRate(context.Background(), "ARS", "USD")
	assert.Error(t, err)
}

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Name() string { return m.Called().String(0) }

func (m *mockSource) FetchRate(ctx context.Context, currency, reference string) (decimal.Decimal, error) {
	args := m.Called(ctx, currency, reference)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func TestChainSource(t *testing.T) {
	ctx := context.Background()
	first, second := new(mockSource), new(mockSource)
	first.On("Name").Return("first").Maybe()
	second.On("Name").Return("second").Maybe()
	first.On("FetchRate", ctx, "ARS", "USD").Return(decimal.Zero, errors.New("down")).Once()
	second.On("FetchRate", ctx, "ARS", "USD").Return(decimal.RequireFromString("0.0008"), nil).Once()

	chain := ratesource.NewChainSource(first, nil, second)
	assert.Equal(t, "chain(first,second)", chain.Name())

	rate, err := chain.FetchRate(ctx, "ARS", "USD")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.0008").Equal(rate))
	first.AssertExpectations(t)
	second.AssertExpectations(t)

	first.On("FetchRate", ctx, "BOB", "USD").Return(decimal.Zero, errors.New("down")).Once()
	second.On("FetchRate", ctx, "BOB", "USD").Return(decimal.Zero, errors.New("unknown")).Once()
	_, err = chain.FetchRate(ctx, "BOB", "USD")
	assert.ErrorContains(t, err, "down")
	assert.ErrorContains(t, err, "unknown")

	_, err = ratesource.NewChainSource().FetchRate(ctx, "BOB", "USD")
	assert.Error(t, err)
}
