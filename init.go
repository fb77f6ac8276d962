package main

import (
	"context"

	"github.com/tournevent/sfbridge/internal/config"
	"github.com/tournevent/sfbridge/internal/telemetry"
	"github.com/tournevent/sfbridge/pkg/fulfillment"
	"github.com/tournevent/sfbridge/pkg/fulfillment/mock"
	"github.com/tournevent/sfbridge/pkg/fulfillment/sfexpress"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

func initTracer(ctx context.Context, cfg *config.Config) (trace.Tracer, func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return nil, func(context.Context) error { return nil }, nil
	}

	return telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version)
}

func initProviderRegistry(cfg *config.Config, logger *otelzap.Logger, tracer trace.Tracer) *fulfillment.Registry {
	registry := fulfillment.NewRegistry()

	if cfg.SFEnabled {
		sf := sfexpress.New(sfexpress.Config{
			PartnerID:            cfg.SFPartnerID,
			Sandbox:              cfg.SFSandbox,
			SecretSandbox:        cfg.SFSecretSandbox,
			SecretProduction:     cfg.SFSecretProduction,
			Timeout:              cfg.SFTimeout,
			Debug:                cfg.SFDebug,
			UseMock:              cfg.SFUseMock,
			DefaultSrcProvince:   cfg.SFDefaultSrcProvince,
			DefaultSrcCity:       cfg.SFDefaultSrcCity,
			DefaultSrcDistrict:   cfg.SFDefaultSrcDistrict,
			DefaultSrcAddress:    cfg.SFDefaultSrcAddress,
			DefaultDestProvince:  cfg.SFDefaultDestProvince,
			DefaultDestCity:      cfg.SFDefaultDestCity,
			DefaultDestDistrict:  cfg.SFDefaultDestDistrict,
			DefaultDestAddress:   cfg.SFDefaultDestAddress,
			DefaultPaymentTerms:  cfg.SFDefaultPaymentTerms,
			DefaultTransportMode: cfg.SFDefaultTransportMode,
			DefaultSendTime:      cfg.SFDefaultSendTime,
		}, nil, logger, tracer)
		registry.Register(sf)
	}

	if cfg.MockEnabled {
		registry.Register(mock.New("mockcarrier"))
	}

	return registry
}
