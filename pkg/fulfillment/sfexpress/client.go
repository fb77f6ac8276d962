// Package sfexpress provides integration with the SF Express carrier API.
package sfexpress

import (
	"context"
	"time"

	"github.com/tournevent/sfbridge/pkg/fulfillment"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const providerName = "sfexpress"

// consignedTimeLayout is the timestamp format the carrier expects for
// consignment times.
const consignedTimeLayout = "2006-01-02 15:04:05"

// Config holds SF Express provider configuration.
type Config struct {
	PartnerID        string
	Sandbox          bool
	SecretSandbox    string
	SecretProduction string
	Timeout          time.Duration
	Debug            bool
	UseMock          bool // When true, uses mock API client

	// Default origin address used when the order context has none.
	DefaultSrcProvince string
	DefaultSrcCity     string
	DefaultSrcDistrict string
	DefaultSrcAddress  string

	// Default destination address fallbacks.
	DefaultDestProvince string
	DefaultDestCity     string
	DefaultDestDistrict string
	DefaultDestAddress  string

	DefaultPaymentTerms  string
	DefaultTransportMode string
	DefaultSendTime      string // carrier consignedTime; empty means "now"
}

// secret returns the environment-appropriate credential secret.
func (c Config) secret() string {
	if c.Sandbox {
		return c.SecretSandbox
	}
	return c.SecretProduction
}

// Client is the SF Express fulfillment provider. It implements the
// fulfillment.Provider interface and delegates API calls to the underlying
// APIClient (mock or HTTP).
type Client struct {
	config     Config
	apiClient  APIClient
	options    []fulfillment.Option
	calculator *Calculator
	logger     *otelzap.Logger
	tracer     trace.Tracer
}

// New creates a new SF Express provider. If cfg.UseMock is true, it uses a
// mock API client for testing. Otherwise, it uses the real HTTP API client.
// Passing a nil rate table selects the built-in defaults.
func New(cfg Config, rates RateTable, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			PartnerID: cfg.PartnerID,
			Secret:    cfg.secret(),
			Sandbox:   cfg.Sandbox,
			Timeout:   cfg.Timeout,
		})
	}

	return NewWithAPIClient(cfg, rates, apiClient, logger, tracer)
}

// NewWithAPIClient creates a new SF Express provider with a custom API
// client. This is useful for injecting mock clients in tests.
func NewWithAPIClient(cfg Config, rates RateTable, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	if rates == nil {
		rates = DefaultRateTable()
	}

	return &Client{
		config:     cfg,
		apiClient:  apiClient,
		options:    defaultCatalog(rates),
		calculator: NewCalculator(DefaultRemoteAreas()),
		logger:     logger,
		tracer:     tracer,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return providerName
}

// FulfillmentOptions returns the shipping option catalog.
func (c *Client) FulfillmentOptions(ctx context.Context) ([]fulfillment.Option, error) {
	opts := make([]fulfillment.Option, len(c.options))
	copy(opts, c.options)
	return opts, nil
}

// ValidateOption reports whether the payload resolves to a known option.
func (c *Client) ValidateOption(payload map[string]any) bool {
	return c.resolveOption(payload) != nil
}

// ValidateFulfillmentData validates the option payload and echoes the
// fulfillment data back unchanged.
func (c *Client) ValidateFulfillmentData(ctx context.Context, payload map[string]any, data map[string]any) (map[string]any, error) {
	opt := c.resolveOption(payload)
	if opt == nil {
		return nil, fulfillment.NewUnknownOptionError(providerName, "option payload carries no usable identifier")
	}

	if c.config.Debug {
		c.logger.Ctx(ctx).Debug("Resolved SF Express option",
			zap.String("option_id", opt.ID),
			zap.String("business_type", opt.BusinessType),
		)
	}

	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}

// CalculatePrice computes a shipping price quote from the injected rate
// table. An unresolvable option propagates to the caller; any downstream
// calculation failure degrades to a fixed nominal quote so a pricing bug
// never blocks checkout. The degradation is logged as a warning, never
// swallowed silently.
func (c *Client) CalculatePrice(ctx context.Context, payload map[string]any, data map[string]any, pctx *fulfillment.PriceContext) (*fulfillment.PriceQuote, error) {
	opt := c.resolveOption(payload)
	if opt == nil {
		return nil, fulfillment.NewUnknownOptionError(providerName, "missing business type for price calculation")
	}

	var (
		currency    string
		items       []fulfillment.Item
		destCountry string
	)
	if pctx != nil {
		currency = pctx.Currency
		items = pctx.Items
		if pctx.ShippingAddress != nil {
			destCountry = pctx.ShippingAddress.CountryCode
		}
	}

	quote, err := c.calculator.Quote(opt, currency, items, destCountry)
	if err != nil {
		c.logger.Ctx(ctx).Warn("SF Express price calculation degraded to nominal fallback",
			zap.String("option_id", opt.ID),
			zap.String("currency", currency),
			zap.Error(err),
		)
		return &fulfillment.PriceQuote{CalculatedAmount: 0, TaxInclusive: false}, nil
	}
	return quote, nil
}

// DeliverEstimate queries the carrier for the estimated delivery time and
// freight fee of a shipment. This is the remote counterpart to the local
// rate-table calculation.
func (c *Client) DeliverEstimate(ctx context.Context, payload map[string]any, pctx *fulfillment.PriceContext) (*DeliverTimeResult, error) {
	opt := c.resolveOption(payload)
	if opt == nil {
		return nil, fulfillment.NewUnknownOptionError(providerName, "missing business type for deliver-time query")
	}

	req := c.buildDeliverTimeRequest(opt.BusinessType, pctx)

	result, err := c.apiClient.QueryDeliverTime(ctx, req)
	if err != nil {
		c.logger.Ctx(ctx).Error("SF Express deliver-time query failed",
			zap.String("business_type", opt.BusinessType),
			zap.Error(err),
		)
		return nil, err
	}
	return result, nil
}

// RecommendProducts queries the carrier's product recommendations for the
// route described by the price context.
func (c *Client) RecommendProducts(ctx context.Context, pctx *fulfillment.PriceContext) ([]ProductRecommendation, error) {
	var items []fulfillment.Item
	if pctx != nil {
		items = pctx.Items
	}

	req := &ProductQueryRequest{
		ConsignedTime: c.consignedTime(),
		Weight:        totalWeightKG(items),
		SrcAddress:    c.defaultSrcAddress(),
		DestAddress:   c.destAddress(pctx),
	}

	products, err := c.apiClient.QueryProducts(ctx, req)
	if err != nil {
		c.logger.Ctx(ctx).Error("SF Express product query failed", zap.Error(err))
		return nil, err
	}
	return products, nil
}

// CreateFulfillment registers a fulfillment record. Shipping label creation
// is intentionally inert in the current scope: the call logs and echoes the
// record for tracking, with no remote side effect.
func (c *Client) CreateFulfillment(ctx context.Context, req *fulfillment.CreateFulfillmentRequest) (*fulfillment.FulfillmentRecord, error) {
	c.logger.Ctx(ctx).Info("SF Express createFulfillment invoked",
		zap.Int("item_count", len(req.Items)),
		zap.String("order_id", req.OrderID),
	)

	data := map[string]any{}
	for k, v := range req.Data {
		data[k] = v
	}
	data["order_reference"] = req.OrderID
	data["fulfillment_id"] = req.FulfillmentID
	if _, ok := data["payment_terms"]; !ok && c.config.DefaultPaymentTerms != "" {
		data["payment_terms"] = c.config.DefaultPaymentTerms
	}
	if _, ok := data["transport_mode"]; !ok && c.config.DefaultTransportMode != "" {
		data["transport_mode"] = c.config.DefaultTransportMode
	}

	return &fulfillment.FulfillmentRecord{Data: data}, nil
}

// CancelFulfillment acknowledges a cancellation. No remote action is
// implemented in the current scope.
func (c *Client) CancelFulfillment(ctx context.Context, req *fulfillment.CancelFulfillmentRequest) (*fulfillment.CancelRecord, error) {
	c.logger.Ctx(ctx).Info("SF Express cancelFulfillment called; no remote action implemented",
		zap.String("fulfillment_id", req.FulfillmentID),
	)
	return &fulfillment.CancelRecord{FulfillmentID: req.FulfillmentID, Canceled: true}, nil
}

// CreateReturnFulfillment echoes the return record. Passthrough only.
func (c *Client) CreateReturnFulfillment(ctx context.Context, data map[string]any) (*fulfillment.FulfillmentRecord, error) {
	c.logger.Ctx(ctx).Info("SF Express createReturnFulfillment called; passthrough only")
	return &fulfillment.FulfillmentRecord{Data: data}, nil
}

// ============================================================================
// Request assembly helpers
// ============================================================================

func (c *Client) buildDeliverTimeRequest(businessType string, pctx *fulfillment.PriceContext) *DeliverTimeRequest {
	var items []fulfillment.Item
	if pctx != nil {
		items = pctx.Items
	}

	return &DeliverTimeRequest{
		BusinessType:  businessType,
		SearchPrice:   "1",
		ConsignedTime: c.consignedTime(),
		Weight:        totalWeightKG(items),
		SrcAddress:    c.defaultSrcAddress(),
		DestAddress:   c.destAddress(pctx),
	}
}

func (c *Client) consignedTime() string {
	if c.config.DefaultSendTime != "" {
		return c.config.DefaultSendTime
	}
	return time.Now().Format(consignedTimeLayout)
}

func (c *Client) defaultSrcAddress() AddressPayload {
	return AddressPayload{
		Province: c.config.DefaultSrcProvince,
		City:     c.config.DefaultSrcCity,
		District: c.config.DefaultSrcDistrict,
		Address:  c.config.DefaultSrcAddress,
	}
}

// destAddress resolves the destination from the price context, falling back
// to the configured defaults field by field.
func (c *Client) destAddress(pctx *fulfillment.PriceContext) AddressPayload {
	dest := AddressPayload{
		Province: c.config.DefaultDestProvince,
		City:     c.config.DefaultDestCity,
		District: c.config.DefaultDestDistrict,
		Address:  c.config.DefaultDestAddress,
	}
	if pctx == nil || pctx.ShippingAddress == nil {
		return dest
	}

	addr := pctx.ShippingAddress
	if addr.Province != "" {
		dest.Province = addr.Province
	}
	if addr.City != "" {
		dest.City = addr.City
	}
	if addr.District != "" {
		dest.District = addr.District
	}
	if addr.Address != "" {
		dest.Address = addr.Address
	}
	if addr.PostalCode != "" {
		dest.Code = addr.PostalCode
	}
	return dest
}

// Ensure Client implements the Provider interface
var _ fulfillment.Provider = (*Client)(nil)
