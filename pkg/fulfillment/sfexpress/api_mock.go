package sfexpress

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tournevent/sfbridge/pkg/fulfillment"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnQueryDeliverTime func(ctx context.Context, req *DeliverTimeRequest) (*DeliverTimeResult, error)
	OnQueryProducts    func(ctx context.Context, req *ProductQueryRequest) ([]ProductRecommendation, error)
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// QueryDeliverTime returns a mock deliver-time estimate.
func (m *MockAPIClient) QueryDeliverTime(ctx context.Context, req *DeliverTimeRequest) (*DeliverTimeResult, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, fulfillment.NewBusinessError(providerName, "simulated carrier error")
	}

	if m.OnQueryDeliverTime != nil {
		return m.OnQueryDeliverTime(ctx, req)
	}

	deliverBy := time.Now().Add(48 * time.Hour).Format(consignedTimeLayout)
	return &DeliverTimeResult{
		DeliverTmDto: []DeliverTm{
			{
				BusinessType:     req.BusinessType,
				BusinessTypeDesc: "标准快递",
				DeliverTime:      deliverBy,
				Fee:              json.Number("2300"),
			},
		},
	}, nil
}

// QueryProducts returns mock product recommendations.
func (m *MockAPIClient) QueryProducts(ctx context.Context, req *ProductQueryRequest) ([]ProductRecommendation, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, fulfillment.NewBusinessError(providerName, "simulated carrier error")
	}

	if m.OnQueryProducts != nil {
		return m.OnQueryProducts(ctx, req)
	}

	return []ProductRecommendation{
		{
			BusinessType: businessTypeStandard,
			ProductCode:  "SE0002",
			ProductName:  "顺丰标准",
			ProductDesc:  "Standard ground delivery",
			Fee:          json.Number("1800"),
		},
		{
			BusinessType: businessTypeExpress,
			ProductCode:  "SE0001",
			ProductName:  "顺丰特快",
			ProductDesc:  "Express air delivery",
			Fee:          json.Number("2800"),
		},
	}, nil
}

var _ APIClient = (*MockAPIClient)(nil)
