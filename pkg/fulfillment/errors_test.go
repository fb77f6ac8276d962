package fulfillment_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tournevent/sfbridge/pkg/fulfillment"
)

func TestProviderError_Error(t *testing.T) {
	err := fulfillment.NewProviderError("sfexpress", "UNKNOWN_OPTION", "No such option")
	assert.Equal(t, "sfexpress error (UNKNOWN_OPTION): No such option", err.Error())
}

func TestProviderError_ErrorWithCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := fulfillment.NewProviderError("sfexpress", "TRANSPORT_ERROR", "API call failed").WithCause(cause)
	assert.Contains(t, err.Error(), "API call failed")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestProviderError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := fulfillment.NewProviderError("sfexpress", "TRANSPORT_ERROR", "API call failed").WithCause(cause)
	assert.True(t, errors.Is(err, cause))
}

func TestProviderError_Is(t *testing.T) {
	err1 := fulfillment.NewProviderError("sfexpress", "BUSINESS_ERROR", "No rate found")
	err2 := fulfillment.NewProviderError("mockcarrier", "BUSINESS_ERROR", "Different message")

	// Same code should match
	assert.True(t, errors.Is(err1, err2))
}

func TestProviderError_IsNot(t *testing.T) {
	err1 := fulfillment.NewProviderError("sfexpress", "BUSINESS_ERROR", "No rate found")
	err2 := fulfillment.NewProviderError("sfexpress", "TIMEOUT_ERROR", "Different error")

	// Different codes should not match
	assert.False(t, errors.Is(err1, err2))
}

func TestConstructors_SentinelCauses(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		code     string
	}{
		{"configuration", fulfillment.NewConfigurationError("sfexpress", "missing partner id"), fulfillment.ErrConfiguration, fulfillment.CodeConfiguration},
		{"authentication", fulfillment.NewAuthenticationError("sfexpress", "bad secret"), fulfillment.ErrAuthentication, fulfillment.CodeAuthentication},
		{"transport", fulfillment.NewTransportError("sfexpress", "HTTP 503", 503), fulfillment.ErrTransport, fulfillment.CodeTransport},
		{"timeout", fulfillment.NewTimeoutError("sfexpress", "deadline exceeded"), fulfillment.ErrTimeout, fulfillment.CodeTimeout},
		{"business", fulfillment.NewBusinessError("sfexpress", "no rate found"), fulfillment.ErrBusiness, fulfillment.CodeBusiness},
		{"unknown option", fulfillment.NewUnknownOptionError("sfexpress", "no catalog match"), fulfillment.ErrUnknownOption, fulfillment.CodeUnknownOption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.sentinel))

			var provErr *fulfillment.ProviderError
			assert.True(t, errors.As(tt.err, &provErr))
			assert.Equal(t, tt.code, provErr.Code)
		})
	}
}

func TestNewTransportError_StatusCode(t *testing.T) {
	err := fulfillment.NewTransportError("sfexpress", "carrier returned HTTP 502", 502)
	assert.Equal(t, 502, err.StatusCode)
}

func TestNewTimeoutError_Retryable(t *testing.T) {
	err := fulfillment.NewTimeoutError("sfexpress", "request timed out")
	assert.True(t, err.Retryable)
	assert.True(t, fulfillment.IsRetryable(err))
}

func TestIsRetryable_NotRetryable(t *testing.T) {
	assert.False(t, fulfillment.IsRetryable(fulfillment.NewUnknownOptionError("sfexpress", "no match")))
	assert.False(t, fulfillment.IsRetryable(fulfillment.NewConfigurationError("sfexpress", "missing secret")))
}

func TestIsRetryable_TimeoutSentinel(t *testing.T) {
	assert.True(t, fulfillment.IsRetryable(fulfillment.ErrTimeout))
}

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrConfiguration", fulfillment.ErrConfiguration},
		{"ErrAuthentication", fulfillment.ErrAuthentication},
		{"ErrTransport", fulfillment.ErrTransport},
		{"ErrTimeout", fulfillment.ErrTimeout},
		{"ErrBusiness", fulfillment.ErrBusiness},
		{"ErrUnknownOption", fulfillment.ErrUnknownOption},
		{"ErrProviderNotFound", fulfillment.ErrProviderNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}
