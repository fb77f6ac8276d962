package fulfillment

import (
	"errors"
	"fmt"
)

// Error codes used by ProviderError.
const (
	CodeConfiguration  = "CONFIGURATION_ERROR"
	CodeAuthentication = "AUTHENTICATION_ERROR"
	CodeTransport      = "TRANSPORT_ERROR"
	CodeTimeout        = "TIMEOUT_ERROR"
	CodeBusiness       = "BUSINESS_ERROR"
	CodeUnknownOption  = "UNKNOWN_OPTION"
)

// ProviderError represents an error from a fulfillment provider.
type ProviderError struct {
	Provider   string
	Code       string
	Message    string
	StatusCode int
	Retryable  bool
	Cause      error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error (%s): %s: %v", e.Provider, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error (%s): %s", e.Provider, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for ProviderError.
func (e *ProviderError) Is(target error) bool {
	t, ok := target.(*ProviderError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewProviderError creates a new ProviderError.
func NewProviderError(provider, code, message string) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Code:     code,
		Message:  message,
	}
}

// WithCause adds a cause to the error.
func (e *ProviderError) WithCause(err error) *ProviderError {
	e.Cause = err
	return e
}

// WithStatusCode adds an HTTP status code to the error.
func (e *ProviderError) WithStatusCode(code int) *ProviderError {
	e.StatusCode = code
	return e
}

// WithRetryable marks the error as retryable.
func (e *ProviderError) WithRetryable(retryable bool) *ProviderError {
	e.Retryable = retryable
	return e
}

// Sentinel errors for the provider error taxonomy. Constructors below attach
// them as causes so callers can branch with errors.Is.
var (
	// ErrConfiguration indicates a missing credential or required default.
	ErrConfiguration = errors.New("configuration error")

	// ErrAuthentication indicates the carrier rejected or could not issue a token.
	ErrAuthentication = errors.New("authentication failed")

	// ErrTransport indicates a non-success HTTP status or malformed envelope.
	ErrTransport = errors.New("transport failure")

	// ErrTimeout indicates the request exceeded the configured deadline.
	ErrTimeout = errors.New("request timed out")

	// ErrBusiness indicates the carrier accepted the request but the
	// underlying shipping operation failed.
	ErrBusiness = errors.New("carrier business error")

	// ErrUnknownOption indicates the option payload has no catalog match.
	ErrUnknownOption = errors.New("unknown fulfillment option")

	// ErrProviderNotFound indicates the requested provider is not registered.
	ErrProviderNotFound = errors.New("provider not found")
)

// NewConfigurationError creates a non-retryable configuration error.
func NewConfigurationError(provider, message string) *ProviderError {
	return NewProviderError(provider, CodeConfiguration, message).WithCause(ErrConfiguration)
}

// NewAuthenticationError creates an authentication error.
func NewAuthenticationError(provider, message string) *ProviderError {
	return NewProviderError(provider, CodeAuthentication, message).WithCause(ErrAuthentication)
}

// NewTransportError creates a transport error carrying the HTTP status.
func NewTransportError(provider, message string, statusCode int) *ProviderError {
	return NewProviderError(provider, CodeTransport, message).
		WithCause(ErrTransport).
		WithStatusCode(statusCode)
}

// NewTimeoutError creates a retryable timeout error.
func NewTimeoutError(provider, message string) *ProviderError {
	return NewProviderError(provider, CodeTimeout, message).
		WithCause(ErrTimeout).
		WithRetryable(true)
}

// NewBusinessError creates a business-level carrier error.
func NewBusinessError(provider, message string) *ProviderError {
	return NewProviderError(provider, CodeBusiness, message).WithCause(ErrBusiness)
}

// NewUnknownOptionError creates a non-retryable unknown-option error.
func NewUnknownOptionError(provider, message string) *ProviderError {
	return NewProviderError(provider, CodeUnknownOption, message).WithCause(ErrUnknownOption)
}

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Retryable
	}
	return errors.Is(err, ErrTimeout)
}
