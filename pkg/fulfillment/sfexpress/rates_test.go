package sfexpress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/sfbridge/pkg/fulfillment"
)

func standardTestOption() *fulfillment.Option {
	return &fulfillment.Option{
		ID:           "sf-standard",
		BusinessType: businessTypeStandard,
		Rates: map[string]fulfillment.RateConfig{
			"usd": {
				BaseAmount:  1,
				PerItemRate: 120,
			},
		},
	}
}

func expressTestOption() *fulfillment.Option {
	return &fulfillment.Option{
		ID:           "sf-express",
		BusinessType: businessTypeExpress,
		Rates: map[string]fulfillment.RateConfig{
			"usd": {
				BaseAmount:                1500,
				PerItemRate:               250,
				RemoteAreaSurcharge:       600,
				InternationalSurchargePct: 0.35,
			},
		},
	}
}

func TestCalculator_Quote_PerItemAccumulation(t *testing.T) {
	calc := NewCalculator(nil)

	quote, err := calc.Quote(standardTestOption(), "usd",
		[]fulfillment.Item{{Quantity: 3}}, "cn")

	require.NoError(t, err)
	// base 1 + (3-1)*120
	assert.Equal(t, int64(241), quote.CalculatedAmount)
	assert.False(t, quote.TaxInclusive)
}

func TestCalculator_Quote_ExpressInternationalRemote(t *testing.T) {
	calc := NewCalculator(DefaultRemoteAreas())

	quote, err := calc.Quote(expressTestOption(), "usd",
		[]fulfillment.Item{{Quantity: 1}}, "us")

	require.NoError(t, err)
	// base 1500 + express 15% (225) + international 35% of base (525)
	// + remote-area 600
	assert.Equal(t, int64(2850), quote.CalculatedAmount)
}

func TestCalculator_Quote_DomesticSkipsInternationalSurcharge(t *testing.T) {
	calc := NewCalculator(DefaultRemoteAreas())

	quote, err := calc.Quote(expressTestOption(), "usd",
		[]fulfillment.Item{{Quantity: 1}}, "cn")

	require.NoError(t, err)
	// base 1500 + express 15% only
	assert.Equal(t, int64(1725), quote.CalculatedAmount)
}

func TestCalculator_Quote_EmptyItemsBillsMinimumShipment(t *testing.T) {
	calc := NewCalculator(nil)

	quote, err := calc.Quote(standardTestOption(), "usd", nil, "")

	require.NoError(t, err)
	assert.Equal(t, int64(1), quote.CalculatedAmount)
}

func TestCalculator_Quote_MinAmountClamp(t *testing.T) {
	calc := NewCalculator(nil)
	opt := &fulfillment.Option{
		ID:           "sf-standard",
		BusinessType: businessTypeStandard,
		Rates: map[string]fulfillment.RateConfig{
			"usd": {BaseAmount: 100, PerItemRate: 10, MinAmount: 500},
		},
	}

	quote, err := calc.Quote(opt, "usd", []fulfillment.Item{{Quantity: 2}}, "cn")

	require.NoError(t, err)
	assert.Equal(t, int64(500), quote.CalculatedAmount)
}

func TestCalculator_Quote_CurrencyFallsBackToDefault(t *testing.T) {
	calc := NewCalculator(nil)
	opt := &fulfillment.Option{
		ID:           "sf-standard",
		BusinessType: businessTypeStandard,
		Rates: map[string]fulfillment.RateConfig{
			fulfillment.DefaultRateKey: {BaseAmount: 1200, PerItemRate: 150},
		},
	}

	quote, err := calc.Quote(opt, "EUR", []fulfillment.Item{{Quantity: 2}}, "")

	require.NoError(t, err)
	assert.Equal(t, int64(1350), quote.CalculatedAmount)
}

func TestCalculator_Quote_NoRateConfig(t *testing.T) {
	calc := NewCalculator(nil)
	opt := &fulfillment.Option{ID: "sf-next-morning", BusinessType: businessTypeNextMorning}

	quote, err := calc.Quote(opt, "usd", nil, "")

	assert.Nil(t, quote)
	require.Error(t, err)
	assert.ErrorIs(t, err, fulfillment.ErrConfiguration)
}

func TestCalculator_Quote_NilOption(t *testing.T) {
	calc := NewCalculator(nil)

	quote, err := calc.Quote(nil, "usd", nil, "")

	assert.Nil(t, quote)
	assert.ErrorIs(t, err, fulfillment.ErrUnknownOption)
}

func TestCalculator_Quote_TaxInclusivePropagates(t *testing.T) {
	calc := NewCalculator(nil)
	opt := &fulfillment.Option{
		ID:           "sf-standard",
		BusinessType: businessTypeStandard,
		Rates: map[string]fulfillment.RateConfig{
			"usd": {BaseAmount: 100, TaxInclusive: true},
		},
	}

	quote, err := calc.Quote(opt, "usd", nil, "")

	require.NoError(t, err)
	assert.True(t, quote.TaxInclusive)
}

func TestCalculator_Quote_Deterministic(t *testing.T) {
	calc := NewCalculator(DefaultRemoteAreas())
	items := []fulfillment.Item{{Quantity: 4}, {Quantity: 2}}

	first, err := calc.Quote(expressTestOption(), "usd", items, "au")
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := calc.Quote(expressTestOption(), "usd", items, "au")
		require.NoError(t, err)
		assert.Equal(t, first.CalculatedAmount, again.CalculatedAmount)
	}
}

func TestBillableQuantity(t *testing.T) {
	tests := []struct {
		name  string
		items []fulfillment.Item
		want  int64
	}{
		{"nil items", nil, 1},
		{"empty items", []fulfillment.Item{}, 1},
		{"zero quantities", []fulfillment.Item{{Quantity: 0}}, 1},
		{"negative quantity ignored", []fulfillment.Item{{Quantity: -3}, {Quantity: 2}}, 2},
		{"summed", []fulfillment.Item{{Quantity: 2}, {Quantity: 3}}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, billableQuantity(tt.items))
		})
	}
}

func TestTotalWeightKG(t *testing.T) {
	tests := []struct {
		name  string
		items []fulfillment.Item
		want  float64
	}{
		{"nil items floors at one kilogram", nil, 1},
		{"zero weight floors at one kilogram", []fulfillment.Item{{Quantity: 1}}, 1},
		{"grams converted", []fulfillment.Item{{Quantity: 2, WeightGrams: 1500}}, 3},
		{"sub-kilogram floors at one", []fulfillment.Item{{Quantity: 1, WeightGrams: 400}}, 1},
		{"mixed", []fulfillment.Item{{Quantity: 1, WeightGrams: 500}, {Quantity: 1, WeightGrams: 2500}}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, totalWeightKG(tt.items), 1e-9)
		})
	}
}
