package fulfillment_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/sfbridge/pkg/fulfillment"
	"github.com/tournevent/sfbridge/pkg/fulfillment/mock"
)

func TestRegistry_Register(t *testing.T) {
	registry := fulfillment.NewRegistry()

	registry.Register(mock.New("test-provider"))

	got, err := registry.Get("test-provider")
	require.NoError(t, err, "provider should be registered")
	assert.Equal(t, "test-provider", got.Name())
}

func TestRegistry_Register_Override(t *testing.T) {
	registry := fulfillment.NewRegistry()

	// Register first provider
	registry.Register(mock.New("test-provider"))
	assert.Equal(t, 1, registry.Count())

	// Register again with same name should override
	registry.Register(mock.New("test-provider"))
	assert.Equal(t, 1, registry.Count())
}

func TestRegistry_Get_NotFound(t *testing.T) {
	registry := fulfillment.NewRegistry()

	_, err := registry.Get("nonexistent")
	assert.Error(t, err, "should return error for unregistered provider")
	assert.True(t, errors.Is(err, fulfillment.ErrProviderNotFound))
}

func TestRegistry_All(t *testing.T) {
	registry := fulfillment.NewRegistry()

	registry.Register(mock.New("provider-a"))
	registry.Register(mock.New("provider-b"))
	registry.Register(mock.New("provider-c"))

	all := registry.All()
	assert.Len(t, all, 3)
}

func TestRegistry_Names(t *testing.T) {
	registry := fulfillment.NewRegistry()

	registry.Register(mock.New("sfexpress"))
	registry.Register(mock.New("mockcarrier"))

	names := registry.Names()
	assert.Len(t, names, 2)
	assert.Contains(t, names, "sfexpress")
	assert.Contains(t, names, "mockcarrier")
}

func TestRegistry_Count(t *testing.T) {
	registry := fulfillment.NewRegistry()
	assert.Equal(t, 0, registry.Count())

	registry.Register(mock.New("provider-a"))
	assert.Equal(t, 1, registry.Count())

	registry.Register(mock.New("provider-b"))
	assert.Equal(t, 2, registry.Count())
}

func TestRegistry_AllOptions(t *testing.T) {
	registry := fulfillment.NewRegistry()

	registry.Register(mock.New("provider-a"))
	registry.Register(mock.New("provider-b"))

	ctx := context.Background()
	results, errs := registry.AllOptions(ctx)

	assert.Empty(t, errs, "should have no errors from mock providers")
	assert.Len(t, results, 2, "should have catalogs from both providers")

	for _, result := range results {
		assert.NotEmpty(t, result.Provider)
		assert.NotEmpty(t, result.Options)
	}
}

func TestRegistry_AllOptions_Empty(t *testing.T) {
	registry := fulfillment.NewRegistry()

	ctx := context.Background()
	results, errs := registry.AllOptions(ctx)

	assert.Empty(t, results, "should return empty results for empty registry")
	assert.NotEmpty(t, errs, "should return error for empty registry")
}

func TestRegistry_QuoteAll(t *testing.T) {
	registry := fulfillment.NewRegistry()

	registry.Register(mock.New("provider-a"))
	registry.Register(mock.New("provider-b"))

	payload := map[string]any{"businessType": "standard"}
	pctx := &fulfillment.PriceContext{
		Currency: "usd",
		Items:    []fulfillment.Item{{Quantity: 2}},
	}

	ctx := context.Background()
	results, errs := registry.QuoteAll(ctx, payload, nil, pctx)

	assert.Empty(t, errs)
	assert.Len(t, results, 2)
	for _, result := range results {
		require.NotNil(t, result.Quote)
		assert.Positive(t, result.Quote.CalculatedAmount)
	}
}

func TestRegistry_QuoteAll_CollectsErrors(t *testing.T) {
	registry := fulfillment.NewRegistry()

	registry.Register(mock.New("provider-a"))

	ctx := context.Background()
	results, errs := registry.QuoteAll(ctx, nil, nil, nil)

	assert.Empty(t, results)
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], fulfillment.ErrUnknownOption))
}

func TestOption_RateFor(t *testing.T) {
	opt := &fulfillment.Option{
		ID: "sf-standard",
		Rates: map[string]fulfillment.RateConfig{
			"usd":                      {BaseAmount: 200},
			fulfillment.DefaultRateKey: {BaseAmount: 1200},
		},
	}

	usd, ok := opt.RateFor("USD")
	require.True(t, ok, "currency lookup is case-insensitive")
	assert.Equal(t, int64(200), usd.BaseAmount)

	eur, ok := opt.RateFor("eur")
	require.True(t, ok, "unconfigured currency falls back to default")
	assert.Equal(t, int64(1200), eur.BaseAmount)
}

func TestOption_RateFor_NoConfig(t *testing.T) {
	opt := &fulfillment.Option{ID: "bare"}

	_, ok := opt.RateFor("usd")
	assert.False(t, ok)
}
