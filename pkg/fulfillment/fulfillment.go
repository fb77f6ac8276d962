// Package fulfillment provides an abstraction layer for fulfillment providers.
package fulfillment

import (
	"context"
)

// Provider defines the interface that all fulfillment providers must implement.
type Provider interface {
	// Name returns the provider identifier (e.g., "sfexpress").
	Name() string

	// FulfillmentOptions returns the catalog of shipping options the provider offers.
	FulfillmentOptions(ctx context.Context) ([]Option, error)

	// ValidateOption reports whether the option payload resolves to a known option.
	ValidateOption(payload map[string]any) bool

	// ValidateFulfillmentData validates the option payload and echoes the
	// fulfillment data back to the caller.
	ValidateFulfillmentData(ctx context.Context, payload map[string]any, data map[string]any) (map[string]any, error)

	// CalculatePrice computes a shipping price quote for the given option.
	CalculatePrice(ctx context.Context, payload map[string]any, data map[string]any, pctx *PriceContext) (*PriceQuote, error)

	// CreateFulfillment registers a fulfillment with the provider.
	CreateFulfillment(ctx context.Context, req *CreateFulfillmentRequest) (*FulfillmentRecord, error)

	// CancelFulfillment cancels an existing fulfillment.
	CancelFulfillment(ctx context.Context, req *CancelFulfillmentRequest) (*CancelRecord, error)

	// CreateReturnFulfillment registers a return fulfillment with the provider.
	CreateReturnFulfillment(ctx context.Context, data map[string]any) (*FulfillmentRecord, error)
}
