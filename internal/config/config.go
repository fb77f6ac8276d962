package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"80"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// SF Express credentials
	SFPartnerID        string        `envconfig:"SFEXPRESS_PARTNER_ID"`
	SFSandbox          bool          `envconfig:"SFEXPRESS_SANDBOX" default:"true"`
	SFSecretSandbox    string        `envconfig:"SFEXPRESS_SECRET_SANDBOX"`
	SFSecretProduction string        `envconfig:"SFEXPRESS_SECRET_PRODUCTION"`
	SFTimeout          time.Duration `envconfig:"SFEXPRESS_TIMEOUT" default:"15s"`
	SFDebug            bool          `envconfig:"SFEXPRESS_DEBUG" default:"false"`
	SFEnabled          bool          `envconfig:"SFEXPRESS_ENABLED" default:"true"`
	SFUseMock          bool          `envconfig:"SFEXPRESS_USE_MOCK" default:"false"`

	// SF Express shipment defaults
	SFDefaultSrcProvince   string `envconfig:"SFEXPRESS_DEFAULT_SRC_PROVINCE"`
	SFDefaultSrcCity       string `envconfig:"SFEXPRESS_DEFAULT_SRC_CITY"`
	SFDefaultSrcDistrict   string `envconfig:"SFEXPRESS_DEFAULT_SRC_DISTRICT"`
	SFDefaultSrcAddress    string `envconfig:"SFEXPRESS_DEFAULT_SRC_ADDRESS"`
	SFDefaultDestProvince  string `envconfig:"SFEXPRESS_DEFAULT_DEST_PROVINCE"`
	SFDefaultDestCity      string `envconfig:"SFEXPRESS_DEFAULT_DEST_CITY"`
	SFDefaultDestDistrict  string `envconfig:"SFEXPRESS_DEFAULT_DEST_DISTRICT"`
	SFDefaultDestAddress   string `envconfig:"SFEXPRESS_DEFAULT_DEST_ADDRESS"`
	SFDefaultPaymentTerms  string `envconfig:"SFEXPRESS_DEFAULT_PAYMENT_TERMS" default:"monthly"`
	SFDefaultTransportMode string `envconfig:"SFEXPRESS_DEFAULT_TRANSPORT_MODE" default:"2"`
	SFDefaultSendTime      string `envconfig:"SFEXPRESS_DEFAULT_SEND_TIME"`

	// Mock provider for local development
	MockEnabled bool `envconfig:"MOCK_PROVIDER_ENABLED" default:"false"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"true"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"sfbridge"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the invariants the carrier client depends on. A missing
// credential for the selected environment is a configuration error reported
// up front, never silently defaulted.
func (c *Config) Validate() error {
	if !c.SFEnabled || c.SFUseMock {
		return nil
	}
	if c.SFPartnerID == "" {
		return fmt.Errorf("SFEXPRESS_PARTNER_ID is required when the SF Express provider is enabled")
	}
	if c.SFSandbox && c.SFSecretSandbox == "" {
		return fmt.Errorf("SFEXPRESS_SECRET_SANDBOX is required in sandbox mode")
	}
	if !c.SFSandbox && c.SFSecretProduction == "" {
		return fmt.Errorf("SFEXPRESS_SECRET_PRODUCTION is required in production mode")
	}
	return nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("sfexpress.enabled", c.SFEnabled),
		attribute.Bool("sfexpress.sandbox", c.SFSandbox),
	}
}
