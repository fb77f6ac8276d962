// Package mock provides a mock fulfillment provider for testing.
package mock

import (
	"context"
	"fmt"

	"github.com/tournevent/sfbridge/pkg/fulfillment"
)

// Provider is a mock fulfillment provider for testing.
type Provider struct {
	name string
}

// New creates a new mock provider.
func New(name string) *Provider {
	return &Provider{name: name}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return p.name
}

// FulfillmentOptions returns a fixed two-option catalog.
func (p *Provider) FulfillmentOptions(ctx context.Context) ([]fulfillment.Option, error) {
	return []fulfillment.Option{
		{
			ID:           fmt.Sprintf("%s-standard", p.name),
			DisplayName:  fmt.Sprintf("%s Standard", p.name),
			BusinessType: "2",
			PriceTypes:   []fulfillment.PriceType{fulfillment.PriceFlat, fulfillment.PriceCalculated},
			Rates: map[string]fulfillment.RateConfig{
				fulfillment.DefaultRateKey: {BaseAmount: 1250, PerItemRate: 100, MinAmount: 1250},
			},
		},
		{
			ID:           fmt.Sprintf("%s-express", p.name),
			DisplayName:  fmt.Sprintf("%s Express", p.name),
			BusinessType: "1",
			PriceTypes:   []fulfillment.PriceType{fulfillment.PriceCalculated},
			Rates: map[string]fulfillment.RateConfig{
				fulfillment.DefaultRateKey: {BaseAmount: 2400, PerItemRate: 200, MinAmount: 2400},
			},
		},
	}, nil
}

// ValidateOption accepts any payload carrying an id or business type.
func (p *Provider) ValidateOption(payload map[string]any) bool {
	if payload == nil {
		return false
	}
	_, hasID := payload["id"]
	_, hasType := payload["businessType"]
	return hasID || hasType
}

// ValidateFulfillmentData echoes the data back.
func (p *Provider) ValidateFulfillmentData(ctx context.Context, payload map[string]any, data map[string]any) (map[string]any, error) {
	if !p.ValidateOption(payload) {
		return nil, fulfillment.NewUnknownOptionError(p.name, "option payload carries no usable identifier")
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}

// CalculatePrice returns a fixed quote.
func (p *Provider) CalculatePrice(ctx context.Context, payload map[string]any, data map[string]any, pctx *fulfillment.PriceContext) (*fulfillment.PriceQuote, error) {
	if !p.ValidateOption(payload) {
		return nil, fulfillment.NewUnknownOptionError(p.name, "option payload carries no usable identifier")
	}
	return &fulfillment.PriceQuote{CalculatedAmount: 1250, TaxInclusive: false}, nil
}

// CreateFulfillment returns a passthrough record.
func (p *Provider) CreateFulfillment(ctx context.Context, req *fulfillment.CreateFulfillmentRequest) (*fulfillment.FulfillmentRecord, error) {
	data := map[string]any{}
	for k, v := range req.Data {
		data[k] = v
	}
	data["order_reference"] = req.OrderID
	data["fulfillment_id"] = req.FulfillmentID
	return &fulfillment.FulfillmentRecord{Data: data}, nil
}

// CancelFulfillment acknowledges the cancellation.
func (p *Provider) CancelFulfillment(ctx context.Context, req *fulfillment.CancelFulfillmentRequest) (*fulfillment.CancelRecord, error) {
	return &fulfillment.CancelRecord{FulfillmentID: req.FulfillmentID, Canceled: true}, nil
}

// CreateReturnFulfillment echoes the return data.
func (p *Provider) CreateReturnFulfillment(ctx context.Context, data map[string]any) (*fulfillment.FulfillmentRecord, error) {
	return &fulfillment.FulfillmentRecord{Data: data}, nil
}

var _ fulfillment.Provider = (*Provider)(nil)
