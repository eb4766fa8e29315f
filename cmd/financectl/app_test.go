package main

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/finance_assistant/pkg/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLiveSource(t *testing.T) {
	c := &config.Config{ReferenceCurrency: "USD", FixedRates: "ARS=1000"}

	live, err := newLiveSource(c)
	require.NoError(t, err)
	require.NotNil(t, live)
	assert.Equal(t, "chain(fixed)", live.Name())

	rate, err := live.FetchRate(context.Background(), "ARS", "USD")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.001")))

	c.RateAPIURL = "http://rates.invalid"
	c.RateAPITimeout = time.Second
	live, err = newLiveSource(c)
	require.NoError(t, err)
	assert.Equal(t, "chain(exchangerate-api,fixed)", live.Name())
}

func TestNewLiveSource_NoneConfigured(t *testing.T) {
	live, err := newLiveSource(&config.Config{ReferenceCurrency: "USD"})
	require.NoError(t, err)
	assert.Nil(t, live)
}

func TestNewLiveSource_BadFixedRates(t *testing.T) {
	_, err := newLiveSource(&config.Config{ReferenceCurrency: "USD", FixedRates: "ARS=abc"})
	assert.Error(t, err)
}

func TestNewAppWithMemoryStorage(t *testing.T) {
	a, err := newApp(context.Background(), &config.Config{StorageDriver: config.StorageMemory, ReferenceCurrency: "USD"}, true)
	require.NoError(t, err)
	defer a.close()

	require.NotNil(t, a.services.Ledger)
	quote, err := a.services.ExchangeRate.Rate(context.Background(), "USD", "USD", time.Now())
	require.NoError(t, err)
	assert.True(t, quote.Rate.Equal(decimal.NewFromInt(1)))
}
