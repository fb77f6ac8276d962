// Package server exposes the fulfillment pipeline contract over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tournevent/sfbridge/internal/telemetry"
	"github.com/tournevent/sfbridge/pkg/fulfillment"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Server is the HTTP server for the fulfillment bridge.
type Server struct {
	port     int
	registry *fulfillment.Registry
	logger   *otelzap.Logger
	metrics  *telemetry.Metrics
}

// Config holds server configuration.
type Config struct {
	Port int
}

// New creates a new server instance.
func New(cfg Config, registry *fulfillment.Registry, logger *otelzap.Logger) *Server {
	return &Server{
		port:     cfg.Port,
		registry: registry,
		logger:   logger,
		metrics:  telemetry.NewMetrics(),
	}
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	// Fulfillment pipeline contract
	mux.HandleFunc("GET /fulfillment/options", s.handleOptions)
	mux.HandleFunc("POST /fulfillment/validate", s.handleValidate)
	mux.HandleFunc("POST /fulfillment/price", s.handlePrice)
	mux.HandleFunc("POST /fulfillment/quotes", s.handleQuotes)
	mux.HandleFunc("POST /fulfillment/create", s.handleCreate)
	mux.HandleFunc("POST /fulfillment/cancel", s.handleCancel)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// providerRequest is the common request shape for provider-scoped calls.
// Provider may be empty when exactly one provider is registered.
type providerRequest struct {
	Provider string                    `json:"provider,omitempty"`
	Option   map[string]any            `json:"option"`
	Data     map[string]any            `json:"data,omitempty"`
	Context  *fulfillment.PriceContext `json:"context,omitempty"`

	// Create/cancel fields
	Items         []fulfillment.Item `json:"items,omitempty"`
	OrderID       string             `json:"order_id,omitempty"`
	FulfillmentID string             `json:"fulfillment_id,omitempty"`
	Reason        string             `json:"reason,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	results, errs := s.registry.AllOptions(r.Context())
	for _, err := range errs {
		s.logger.Warn("Provider options lookup failed", zap.Error(err))
	}
	s.metrics.RecordRequest("options", "all", "ok", time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, map[string]any{"providers": results})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	req, provider, ok := s.decodeProviderRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	data, err := provider.ValidateFulfillmentData(r.Context(), req.Option, req.Data)
	if err != nil {
		s.writeProviderError(w, "validate", provider.Name(), err)
		return
	}
	s.metrics.RecordRequest("validate", provider.Name(), "ok", time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	req, provider, ok := s.decodeProviderRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	quote, err := provider.CalculatePrice(r.Context(), req.Option, req.Data, req.Context)
	if err != nil {
		s.writeProviderError(w, "price", provider.Name(), err)
		return
	}
	s.metrics.RecordRequest("price", provider.Name(), "ok", time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, quote)
}

// handleQuotes fans the price calculation out to every registered provider
// and returns the quotes that succeeded.
func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	var req providerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
		return
	}

	start := time.Now()
	quotes, errs := s.registry.QuoteAll(r.Context(), req.Option, req.Data, req.Context)
	for _, err := range errs {
		s.logger.Warn("Provider quote failed", zap.Error(err))
	}
	s.metrics.RecordRequest("quotes", "all", "ok", time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, map[string]any{"quotes": quotes})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	req, provider, ok := s.decodeProviderRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	record, err := provider.CreateFulfillment(r.Context(), &fulfillment.CreateFulfillmentRequest{
		Data:          req.Data,
		Items:         req.Items,
		OrderID:       req.OrderID,
		FulfillmentID: req.FulfillmentID,
	})
	if err != nil {
		s.writeProviderError(w, "create", provider.Name(), err)
		return
	}
	s.metrics.RecordRequest("create", provider.Name(), "ok", time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	req, provider, ok := s.decodeProviderRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	record, err := provider.CancelFulfillment(r.Context(), &fulfillment.CancelFulfillmentRequest{
		FulfillmentID: req.FulfillmentID,
		Reason:        req.Reason,
	})
	if err != nil {
		s.writeProviderError(w, "cancel", provider.Name(), err)
		return
	}
	s.metrics.RecordRequest("cancel", provider.Name(), "ok", time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, record)
}

// decodeProviderRequest parses the request body and resolves the target
// provider. When no provider is named and exactly one is registered, that
// one is used.
func (s *Server) decodeProviderRequest(w http.ResponseWriter, r *http.Request) (*providerRequest, fulfillment.Provider, bool) {
	var req providerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
		return nil, nil, false
	}

	name := req.Provider
	if name == "" {
		names := s.registry.Names()
		if len(names) == 1 {
			name = names[0]
		}
	}

	provider, err := s.registry.Get(name)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return nil, nil, false
	}
	return &req, provider, true
}

func (s *Server) writeProviderError(w http.ResponseWriter, operation, provider string, err error) {
	s.metrics.RecordRequest(operation, provider, "error", 0)

	status := http.StatusBadGateway
	code := fulfillment.CodeTransport
	var provErr *fulfillment.ProviderError
	if errors.As(err, &provErr) {
		code = provErr.Code
	}
	switch {
	case errors.Is(err, fulfillment.ErrUnknownOption):
		status = http.StatusBadRequest
	case errors.Is(err, fulfillment.ErrConfiguration):
		status = http.StatusInternalServerError
	case errors.Is(err, fulfillment.ErrTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, fulfillment.ErrAuthentication):
		status = http.StatusBadGateway
	case errors.Is(err, fulfillment.ErrBusiness):
		status = http.StatusUnprocessableEntity
	}

	s.metrics.RecordError(provider, code)
	s.logger.Error("Provider call failed",
		zap.String("operation", operation),
		zap.String("provider", provider),
		zap.Error(err),
	)
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
