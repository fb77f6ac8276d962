package sfexpress

import (
	"encoding/json"

	"github.com/tournevent/sfbridge/pkg/fulfillment"
)

// rawEnvelope mirrors the wire shape of the carrier envelope before
// normalization. apiResultData may be a structured value or a JSON-encoded
// string requiring a second decode pass.
type rawEnvelope struct {
	ResultCode string          `json:"apiResultCode"`
	ErrorMsg   string          `json:"apiErrorMsg"`
	ResponseID string          `json:"apiResponseID"`
	ResultData json.RawMessage `json:"apiResultData"`
}

// businessFlag is the business-level outcome some services embed in their
// result data even when the envelope result code reports success.
type businessFlag struct {
	Success *bool  `json:"success,omitempty"`
	Msg     string `json:"msg,omitempty"`
	Message string `json:"message,omitempty"`
}

// parseResponse normalizes a raw carrier payload into a Response. On a
// non-success result code or a business-level failure flag the error is
// non-nil; the Response is still returned whenever the envelope decoded,
// so the transport can inspect the result code for its auth-retry policy.
func parseResponse(body []byte) (*Response, error) {
	var env rawEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fulfillment.NewTransportError(providerName, "malformed response envelope", 0).WithCause(err)
	}

	resp := &Response{
		ResultCode: env.ResultCode,
		ErrorMsg:   env.ErrorMsg,
		ResponseID: env.ResponseID,
		raw:        normalizeResultData(env.ResultData),
	}
	if len(resp.raw) > 0 {
		// Best effort: a decode failure here leaves ResultData nil and the
		// raw bytes intact.
		_ = json.Unmarshal(resp.raw, &resp.ResultData)
	}

	if env.ResultCode != codeSuccess {
		msg := env.ErrorMsg
		if msg == "" {
			msg = "carrier request failed with result code " + env.ResultCode
		}
		if env.ResultCode == codeTokenExpired {
			return resp, fulfillment.NewAuthenticationError(providerName, msg)
		}
		return resp, fulfillment.NewBusinessError(providerName, msg)
	}

	if len(resp.raw) > 0 {
		var flag businessFlag
		if err := json.Unmarshal(resp.raw, &flag); err == nil && flag.Success != nil && !*flag.Success {
			msg := flag.Msg
			if msg == "" {
				msg = flag.Message
			}
			if msg == "" {
				msg = "carrier reported the shipping operation failed"
			}
			return resp, fulfillment.NewBusinessError(providerName, msg)
		}
	}

	return resp, nil
}

// normalizeResultData resolves the double-encoded apiResultData variant:
// when the field is a JSON string, the string content is decoded as JSON.
// If that inner decode fails the raw string is kept as-is.
func normalizeResultData(data json.RawMessage) json.RawMessage {
	if len(data) == 0 {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Already a structured value.
		return data
	}

	inner := json.RawMessage(s)
	if !json.Valid(inner) {
		return data
	}
	return inner
}
