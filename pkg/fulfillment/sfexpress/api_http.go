package sfexpress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tournevent/sfbridge/pkg/fulfillment"
)

// Carrier endpoints, selected by the sandbox flag.
const (
	sandboxBaseURL    = "https://sfapi-sbox.sf-express.com/std/service"
	productionBaseURL = "https://sfapi.sf-express.com/std/service"

	sandboxAuthURL    = "https://sfapi-sbox.sf-express.com/oauth2/accessToken"
	productionAuthURL = "https://sfapi.sf-express.com/oauth2/accessToken"
)

const defaultTimeout = 15 * time.Second

// HTTPAPIClient is the production implementation of APIClient. It signs
// every request with the partner id and a cached bearer token, retrying
// exactly once with a fresh token when the carrier rejects the credential.
type HTTPAPIClient struct {
	baseURL    string
	authURL    string
	partnerID  string
	secret     string
	timeout    time.Duration
	httpClient *http.Client
	tokens     *tokenManager
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	PartnerID string
	Secret    string
	Sandbox   bool
	Timeout   time.Duration

	// BaseURL and AuthURL override the environment endpoints. Used in tests.
	BaseURL string
	AuthURL string
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	baseURL := cfg.BaseURL
	authURL := cfg.AuthURL
	if baseURL == "" {
		baseURL = productionBaseURL
		if cfg.Sandbox {
			baseURL = sandboxBaseURL
		}
	}
	if authURL == "" {
		authURL = productionAuthURL
		if cfg.Sandbox {
			authURL = sandboxAuthURL
		}
	}

	c := &HTTPAPIClient{
		baseURL:   baseURL,
		authURL:   authURL,
		partnerID: cfg.PartnerID,
		secret:    cfg.Secret,
		timeout:   timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	c.tokens = newTokenManager(c.fetchToken)
	return c
}

// QueryDeliverTime queries estimated delivery time and freight fee.
func (c *HTTPAPIClient) QueryDeliverTime(ctx context.Context, req *DeliverTimeRequest) (*DeliverTimeResult, error) {
	resp, err := c.call(ctx, ServiceQueryDeliverTime, req)
	if err != nil {
		return nil, err
	}

	var result DeliverTimeResult
	if err := resp.DecodeData(&result); err != nil {
		return nil, fulfillment.NewTransportError(providerName, "unexpected deliver-time payload", 0).WithCause(err)
	}
	return &result, nil
}

// QueryProducts queries the carrier's recommended shipping products.
func (c *HTTPAPIClient) QueryProducts(ctx context.Context, req *ProductQueryRequest) ([]ProductRecommendation, error) {
	resp, err := c.call(ctx, ServiceQueryProduct, req)
	if err != nil {
		return nil, err
	}

	var result productQueryResult
	if err := resp.DecodeData(&result); err != nil {
		return nil, fulfillment.NewTransportError(providerName, "unexpected product payload", 0).WithCause(err)
	}
	return result.entries(), nil
}

// call sends one signed service request. The form carries the partner id, a
// fresh random request id, the service code, a millisecond timestamp, the
// JSON-serialized payload, and the current bearer token. When the carrier
// reports a revoked or expired token the cached credential is invalidated
// and the call is re-issued exactly once with a fresh token; a second such
// rejection surfaces to the caller.
func (c *HTTPAPIClient) call(ctx context.Context, serviceCode string, payload any) (*Response, error) {
	msgData, err := json.Marshal(payload)
	if err != nil {
		return nil, fulfillment.NewTransportError(providerName, "encoding request payload", 0).WithCause(err)
	}

	for attempt := 0; attempt <= 1; attempt++ {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}

		form := url.Values{
			"partnerID":   {c.partnerID},
			"requestID":   {uuid.New().String()},
			"serviceCode": {serviceCode},
			"timestamp":   {strconv.FormatInt(time.Now().UnixMilli(), 10)},
			"msgData":     {string(msgData)},
			"accessToken": {token},
		}

		body, err := c.postForm(ctx, c.baseURL, form)
		if err != nil {
			return nil, err
		}

		resp, perr := parseResponse(body)
		if resp != nil && resp.ResultCode == codeTokenExpired && attempt == 0 {
			c.tokens.Invalidate()
			continue
		}
		if perr != nil {
			return nil, perr
		}
		return resp, nil
	}

	// Unreachable: the second attempt always returns above.
	return nil, fulfillment.NewAuthenticationError(providerName, "token rejected after refresh")
}

// fetchToken performs one token acquisition against the carrier auth
// endpoint. Missing credentials are a configuration error, not a retryable
// failure; a non-success result code or a nominally successful response
// without a token surfaces as an authentication error.
func (c *HTTPAPIClient) fetchToken(ctx context.Context) (*credential, error) {
	if c.partnerID == "" {
		return nil, fulfillment.NewConfigurationError(providerName, "missing partner id")
	}
	if c.secret == "" {
		return nil, fulfillment.NewConfigurationError(providerName, "missing environment secret")
	}

	form := url.Values{
		"partnerID": {c.partnerID},
		"secret":    {c.secret},
		"grantType": {"password"},
	}

	body, err := c.postForm(ctx, c.authURL, form)
	if err != nil {
		return nil, err
	}

	resp, err := parseResponse(body)
	if err != nil {
		// Auth failures at the envelope level belong to the authentication
		// taxonomy, whatever the result code.
		var perr *fulfillment.ProviderError
		if errors.As(err, &perr) && errors.Is(err, fulfillment.ErrBusiness) {
			return nil, fulfillment.NewAuthenticationError(providerName, perr.Message)
		}
		return nil, err
	}

	var data accessTokenData
	if err := resp.DecodeData(&data); err != nil {
		return nil, fulfillment.NewAuthenticationError(providerName, "unexpected token payload").WithCause(err)
	}
	if data.AccessToken == "" {
		return nil, fulfillment.NewAuthenticationError(providerName, "auth response carried no access token")
	}

	return &credential{
		token:     data.AccessToken,
		expiresAt: time.Now().Add(time.Duration(data.ExpiresIn) * time.Second),
	}, nil
}

// postForm sends one form-encoded POST with the configured timeout. A
// deadline overrun is surfaced as a distinct timeout error; any other
// non-2xx outcome is a transport error carrying the HTTP status.
func (c *HTTPAPIClient) postForm(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fulfillment.NewTransportError(providerName, "building request", 0).WithCause(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "sfbridge/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fulfillment.NewTimeoutError(providerName,
				fmt.Sprintf("request to %s exceeded %s", endpoint, c.timeout))
		}
		return nil, fulfillment.NewTransportError(providerName, "sending request", 0).WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, fulfillment.NewTimeoutError(providerName,
				fmt.Sprintf("reading response from %s exceeded %s", endpoint, c.timeout))
		}
		return nil, fulfillment.NewTransportError(providerName, "reading response", resp.StatusCode).WithCause(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fulfillment.NewTransportError(providerName,
			fmt.Sprintf("carrier returned HTTP %d", resp.StatusCode), resp.StatusCode)
	}

	return body, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Ensure HTTPAPIClient implements APIClient interface
var _ APIClient = (*HTTPAPIClient)(nil)
