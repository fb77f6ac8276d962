package fulfillment

import "strings"

// PriceType identifies how a shipping option is priced.
type PriceType string

const (
	PriceFlat       PriceType = "flat"
	PriceCalculated PriceType = "calculated"
)

// Option is an immutable catalog entry describing one shipping product.
// Options are defined at configuration time and never mutated at runtime.
type Option struct {
	ID           string
	DisplayName  string
	BusinessType string // carrier service-class code, e.g. "1" (express), "2" (standard)
	PriceTypes   []PriceType
	// Rates maps a lower-case currency code to its pricing parameters.
	// The "default" entry is used when a currency has no dedicated config.
	Rates map[string]RateConfig
}

// RateFor selects the rate config for a currency code (case-insensitive),
// falling back to the option's "default" entry. The second return value
// reports whether any config was found.
func (o *Option) RateFor(currency string) (RateConfig, bool) {
	if cfg, ok := o.Rates[strings.ToLower(currency)]; ok {
		return cfg, true
	}
	cfg, ok := o.Rates[DefaultRateKey]
	return cfg, ok
}

// DefaultRateKey is the fallback entry in an option's rate mapping.
const DefaultRateKey = "default"

// RateConfig holds the pricing parameters for one option/currency pair.
// All monetary fields are integer minor currency units.
type RateConfig struct {
	BaseAmount          int64
	PerItemRate         int64
	MinAmount           int64
	RemoteAreaSurcharge int64
	// InternationalSurchargePct is a fraction of BaseAmount (e.g. 0.35)
	// added for non-domestic destinations. Zero disables the surcharge.
	InternationalSurchargePct float64
	TaxInclusive              bool
}

// PriceQuote is the output of a price calculation. It is never persisted.
type PriceQuote struct {
	// CalculatedAmount is the quoted price in minor currency units.
	CalculatedAmount int64 `json:"calculated_amount"`
	TaxInclusive     bool  `json:"is_calculated_price_tax_inclusive"`
}

// Item is one order line relevant to price and weight calculation.
type Item struct {
	Quantity    int64   `json:"quantity"`
	WeightGrams float64 `json:"weight,omitempty"`
}

// ShippingAddress carries the destination fields the carrier understands.
type ShippingAddress struct {
	Province    string `json:"province,omitempty"`
	City        string `json:"city,omitempty"`
	District    string `json:"district,omitempty"`
	Address     string `json:"address,omitempty"`
	CountryCode string `json:"country_code,omitempty"` // ISO 3166-1 alpha-2, lower-case
	PostalCode  string `json:"postal_code,omitempty"`
}

// PriceContext is the calculation context supplied by the order pipeline.
type PriceContext struct {
	Currency        string           `json:"currency_code"`
	Items           []Item           `json:"items"`
	ShippingAddress *ShippingAddress `json:"shipping_address,omitempty"`
}

// CreateFulfillmentRequest is the request for creating a fulfillment.
type CreateFulfillmentRequest struct {
	Data           map[string]any `json:"data"`
	Items          []Item         `json:"items"`
	OrderID        string         `json:"order_id"`
	FulfillmentID  string         `json:"fulfillment_id"`
	TrackingNumber string         `json:"tracking_number,omitempty"`
}

// FulfillmentRecord is the passthrough record returned from fulfillment
// lifecycle calls. No remote side effect is implied.
type FulfillmentRecord struct {
	Data map[string]any `json:"data"`
}

// CancelFulfillmentRequest is the request for cancelling a fulfillment.
type CancelFulfillmentRequest struct {
	FulfillmentID string `json:"fulfillment_id"`
	Reason        string `json:"reason,omitempty"`
}

// CancelRecord is the acknowledgement returned from a cancellation.
type CancelRecord struct {
	FulfillmentID string `json:"fulfillment_id"`
	Canceled      bool   `json:"canceled"`
}

