package sfexpress

import (
	"context"
	"encoding/json"
)

// APIClient defines the interface for SF Express API operations.
// This abstraction allows for mock implementations during testing
// and real implementations in production.
type APIClient interface {
	// QueryDeliverTime queries estimated delivery time and freight fee
	// for a route and service class.
	QueryDeliverTime(ctx context.Context, req *DeliverTimeRequest) (*DeliverTimeResult, error)

	// QueryProducts queries the carrier's recommended shipping products
	// for a route.
	QueryProducts(ctx context.Context, req *ProductQueryRequest) ([]ProductRecommendation, error)
}

// Service codes understood by the carrier's unified service endpoint.
const (
	ServiceQueryDeliverTime = "EXP_RECE_QUERY_DELIVERTM"
	ServiceQueryProduct     = "EXP_RECE_QUERY_PRODUCT"
)

// Result codes of the carrier response envelope.
const (
	// codeSuccess is the envelope-level success sentinel.
	codeSuccess = "A1000"

	// codeTokenExpired indicates a revoked or expired access token.
	// The transport invalidates the cached token and retries once.
	codeTokenExpired = "A1006"
)

// ============================================================================
// API Request/Response Types (match the SF Express unified service envelope)
// ============================================================================

// Response is the normalized carrier response envelope. ResultData always
// holds a structured value after parsing; a JSON-encoded string payload is
// decoded in a second pass.
type Response struct {
	ResultCode string `json:"apiResultCode"`
	ErrorMsg   string `json:"apiErrorMsg,omitempty"`
	ResponseID string `json:"apiResponseID,omitempty"`

	// raw carries the structured apiResultData bytes after normalization.
	raw json.RawMessage

	// ResultData is the generic decoded form of apiResultData.
	ResultData any `json:"-"`
}

// DecodeData unmarshals the normalized apiResultData into v.
func (r *Response) DecodeData(v any) error {
	if len(r.raw) == 0 {
		return nil
	}
	return json.Unmarshal(r.raw, v)
}

// AddressPayload is the carrier's address shape for routing queries.
type AddressPayload struct {
	Province string `json:"province,omitempty"`
	City     string `json:"city,omitempty"`
	District string `json:"district,omitempty"`
	Address  string `json:"address,omitempty"`
	Code     string `json:"code,omitempty"`
}

// DeliverTimeRequest is the msgData payload for EXP_RECE_QUERY_DELIVERTM.
type DeliverTimeRequest struct {
	BusinessType  string         `json:"businessType"`
	SearchPrice   string         `json:"searchPrice"` // "1" to include freight fee
	ConsignedTime string         `json:"consignedTime"`
	Weight        float64        `json:"weight"` // kilograms
	SrcAddress    AddressPayload `json:"srcAddress"`
	DestAddress   AddressPayload `json:"destAddress"`
}

// DeliverTm is one delivery-time/fee entry in the carrier response.
type DeliverTm struct {
	BusinessType     string      `json:"businessType,omitempty"`
	BusinessTypeDesc string      `json:"businessTypeDesc,omitempty"`
	DeliverTime      string      `json:"deliverTm,omitempty"`
	Fee              json.Number `json:"fee,omitempty"`
}

// DeliverTimeResult is the decoded apiResultData for a deliver-time query.
// Some carrier gateways nest the entry list under msgData and some return
// it at the top level; Entries handles both.
type DeliverTimeResult struct {
	MsgData *struct {
		DeliverTmDto []DeliverTm `json:"deliverTmDto"`
	} `json:"msgData,omitempty"`
	DeliverTmDto []DeliverTm `json:"deliverTmDto,omitempty"`
	Success      *bool       `json:"success,omitempty"`
	Msg          string      `json:"msg,omitempty"`
}

// Entries returns the deliver-time entries regardless of nesting.
func (r *DeliverTimeResult) Entries() []DeliverTm {
	if r.MsgData != nil && len(r.MsgData.DeliverTmDto) > 0 {
		return r.MsgData.DeliverTmDto
	}
	return r.DeliverTmDto
}

// Fee returns the freight fee of the first entry in minor currency units.
// The second return value reports whether a usable fee was present.
func (r *DeliverTimeResult) Fee() (int64, bool) {
	entries := r.Entries()
	if len(entries) == 0 {
		return 0, false
	}
	fee, err := entries[0].Fee.Int64()
	if err != nil {
		// Some gateways return the fee as a decimal number.
		f, ferr := entries[0].Fee.Float64()
		if ferr != nil {
			return 0, false
		}
		return int64(f), true
	}
	return fee, true
}

// ProductQueryRequest is the msgData payload for EXP_RECE_QUERY_PRODUCT.
type ProductQueryRequest struct {
	ConsignedTime string         `json:"consignedTime,omitempty"`
	Weight        float64        `json:"weight,omitempty"`
	SrcAddress    AddressPayload `json:"srcAddress"`
	DestAddress   AddressPayload `json:"destAddress"`
}

// ProductRecommendation is one shipping product suggested by the carrier.
type ProductRecommendation struct {
	BusinessType string      `json:"businessType,omitempty"`
	ProductCode  string      `json:"productCode,omitempty"`
	ProductName  string      `json:"productName,omitempty"`
	ProductDesc  string      `json:"productDesc,omitempty"`
	Fee          json.Number `json:"fee,omitempty"`
}

// productQueryResult is the decoded apiResultData for a product query.
type productQueryResult struct {
	MsgData *struct {
		Products []ProductRecommendation `json:"deliverProductDto"`
	} `json:"msgData,omitempty"`
	Products []ProductRecommendation `json:"deliverProductDto,omitempty"`
}

func (r *productQueryResult) entries() []ProductRecommendation {
	if r.MsgData != nil && len(r.MsgData.Products) > 0 {
		return r.MsgData.Products
	}
	return r.Products
}

// accessTokenData is the decoded apiResultData of the auth endpoint.
type accessTokenData struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"` // seconds
}
