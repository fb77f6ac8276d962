package sfexpress

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tournevent/sfbridge/pkg/fulfillment"
)

// domesticCountryCode is the carrier's home market. Destinations elsewhere
// attract the international surcharge when one is configured.
const domesticCountryCode = "cn"

// expressSurchargePct is the handling surcharge applied to the express
// service class, as a fraction of the running amount.
var expressSurchargePct = decimal.NewFromFloat(0.15)

// RateTable maps a business-type code to its per-currency rate configs.
// It is constructed once at startup and injected into the calculator so
// tests can substitute alternate tables.
type RateTable map[string]map[string]fulfillment.RateConfig

// DefaultRateTable returns the built-in rate table. Amounts are minor
// currency units.
func DefaultRateTable() RateTable {
	return RateTable{
		businessTypeStandard: {
			fulfillment.DefaultRateKey: {
				BaseAmount:                1200,
				PerItemRate:               150,
				MinAmount:                 1200,
				RemoteAreaSurcharge:       500,
				InternationalSurchargePct: 0.30,
			},
			"usd": {
				BaseAmount:                200,
				PerItemRate:               25,
				MinAmount:                 200,
				RemoteAreaSurcharge:       80,
				InternationalSurchargePct: 0.30,
			},
		},
		businessTypeExpress: {
			fulfillment.DefaultRateKey: {
				BaseAmount:                1800,
				PerItemRate:               250,
				MinAmount:                 1800,
				RemoteAreaSurcharge:       600,
				InternationalSurchargePct: 0.35,
			},
			"usd": {
				BaseAmount:                300,
				PerItemRate:               40,
				MinAmount:                 300,
				RemoteAreaSurcharge:       100,
				InternationalSurchargePct: 0.35,
			},
		},
	}
}

// DefaultRemoteAreas returns the built-in set of destinations that attract
// the remote-area surcharge. Country codes are ISO 3166-1 alpha-2,
// lower-case.
func DefaultRemoteAreas() map[string]bool {
	return map[string]bool{
		"us": true,
		"ca": true,
		"au": true,
		"nz": true,
		"br": true,
		"cl": true,
		"za": true,
		"is": true,
	}
}

// Calculator computes shipping price quotes from rate configs. It is a
// deterministic, pure function of its inputs.
type Calculator struct {
	remoteAreas map[string]bool
}

// NewCalculator creates a calculator with the given remote-area set.
func NewCalculator(remoteAreas map[string]bool) *Calculator {
	if remoteAreas == nil {
		remoteAreas = map[string]bool{}
	}
	return &Calculator{remoteAreas: remoteAreas}
}

// Quote computes the final quoted amount for one option, item list, and
// destination country.
func (c *Calculator) Quote(opt *fulfillment.Option, currency string, items []fulfillment.Item, destCountry string) (*fulfillment.PriceQuote, error) {
	if opt == nil {
		return nil, fulfillment.NewUnknownOptionError(providerName, "no option to quote")
	}

	cfg, ok := opt.RateFor(currency)
	if !ok {
		return nil, fulfillment.NewConfigurationError(providerName,
			"no rate config for option "+opt.ID+" and currency "+strings.ToLower(currency))
	}

	quantity := billableQuantity(items)
	amount := cfg.BaseAmount + (quantity-1)*cfg.PerItemRate

	if opt.BusinessType == businessTypeExpress {
		surcharge := decimal.NewFromInt(amount).Mul(expressSurchargePct).Round(0).IntPart()
		amount += surcharge
	}

	dest := strings.ToLower(strings.TrimSpace(destCountry))
	if dest != "" && dest != domesticCountryCode && cfg.InternationalSurchargePct > 0 {
		surcharge := decimal.NewFromInt(cfg.BaseAmount).
			Mul(decimal.NewFromFloat(cfg.InternationalSurchargePct)).
			Round(0).IntPart()
		amount += surcharge
	}

	if c.remoteAreas[dest] && cfg.RemoteAreaSurcharge > 0 {
		amount += cfg.RemoteAreaSurcharge
	}

	if cfg.MinAmount > 0 && amount < cfg.MinAmount {
		amount = cfg.MinAmount
	}

	return &fulfillment.PriceQuote{
		CalculatedAmount: amount,
		TaxInclusive:     cfg.TaxInclusive,
	}, nil
}

// billableQuantity sums the item quantities with a floor of one: an empty
// or zero-quantity item list represents a minimum shipment.
func billableQuantity(items []fulfillment.Item) int64 {
	var total int64
	for _, it := range items {
		if it.Quantity > 0 {
			total += it.Quantity
		}
	}
	if total < 1 {
		return 1
	}
	return total
}

// totalWeightKG derives the billable shipment weight in kilograms from the
// item list. Item weights arrive in grams; a shipment never weighs in under
// one kilogram.
func totalWeightKG(items []fulfillment.Item) float64 {
	if len(items) == 0 {
		return 1
	}
	var grams float64
	for _, it := range items {
		if it.Quantity > 0 && it.WeightGrams > 0 {
			grams += float64(it.Quantity) * it.WeightGrams
		}
	}
	kg := grams / 1000
	if kg < 1 {
		return 1
	}
	return kg
}
