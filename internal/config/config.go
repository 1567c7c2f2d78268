// Package config reads the server configuration from environment variables.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/rshade/adtech-emissions/internal/defaults"
	"github.com/rshade/adtech-emissions/internal/logging"
)

// DefaultCORSMaxAge is the preflight cache duration used when none is set.
const DefaultCORSMaxAge = 86400

// Config holds the server settings. Empty defaults file paths select the
// embedded defaults.
type Config struct {
	ATPDefaultsFile           string `env:"ATP_DEFAULTS_FILE"`
	OrganizationDefaultsFile  string `env:"ORGANIZATION_DEFAULTS_FILE"`
	PropertyDefaultsFile      string `env:"PROPERTY_DEFAULTS_FILE"`
	EndUserDeviceDefaultsFile string `env:"END_USER_DEVICE_DEFAULTS_FILE"`
	NetworkingDefaultsFile    string `env:"NETWORKING_DEFAULTS_FILE"`
	TransmissionRateFile      string `env:"TRANSMISSION_RATE_FILE"`
	DataDir                   string `env:"DATA_DIR"`
	Port                      int    `env:"PORT"      envDefault:"8080"`
	GRPCPort                  int    `env:"GRPC_PORT" envDefault:"9090"`
	LogLevel                  string `env:"LOG_LEVEL" envDefault:"info"`
	CORS                      CORS
}

// CORS controls cross-origin access to the REST API.
type CORS struct {
	Enabled          bool
	AllowedOrigins   []string
	AllowAll         bool
	AllowCredentials bool
	MaxAge           int
}

type rawCORS struct {
	Enabled          bool   `env:"CORS_ENABLED"`
	AllowedOrigins   string `env:"CORS_ALLOWED_ORIGINS"`
	AllowCredentials string `env:"CORS_ALLOW_CREDENTIALS"`
	MaxAge           string `env:"CORS_MAX_AGE"`
}

// Load parses the environment and validates the result.
func Load(logger zerolog.Logger) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cors, err := parseCORS(logger)
	if err != nil {
		return Config{}, err
	}
	cfg.CORS = cors
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ports and the log level.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.GRPCPort < 1 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid GRPC_PORT %d", c.GRPCPort)
	}
	if c.Port == c.GRPCPort {
		return fmt.Errorf("PORT and GRPC_PORT must differ, both are %d", c.Port)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// DefaultsPaths returns the defaults files to load.
func (c Config) DefaultsPaths() defaults.Paths {
	return defaults.Paths{
		ATP:              c.ATPDefaultsFile,
		Organization:     c.OrganizationDefaultsFile,
		Property:         c.PropertyDefaultsFile,
		EndUserDevice:    c.EndUserDeviceDefaultsFile,
		Networking:       c.NetworkingDefaultsFile,
		TransmissionRate: c.TransmissionRateFile,
	}
}

// HTTPAddr is the REST listen address.
func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// GRPCAddr is the gRPC listen address.
func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

// parseCORS reads the CORS settings. A wildcard origin allows every origin
// and cannot be combined with credentials.
func parseCORS(logger zerolog.Logger) (CORS, error) {
	var raw rawCORS
	if err := env.Parse(&raw); err != nil {
		return CORS{}, fmt.Errorf("parse env: %w", err)
	}
	if !raw.Enabled {
		return CORS{}, nil
	}

	cors := CORS{Enabled: true}
	for _, o := range strings.Split(raw.AllowedOrigins, ",") {
		trimmed := strings.TrimSpace(o)
		if trimmed == "*" {
			cors.AllowAll = true
			continue
		}
		if trimmed != "" {
			cors.AllowedOrigins = append(cors.AllowedOrigins, trimmed)
		}
	}
	if cors.AllowAll {
		logger.Warn().Msg("CORS wildcard origin (*) is insecure; use specific origins in production")
	}

	cors.AllowCredentials = strings.EqualFold(raw.AllowCredentials, "true")
	if cors.AllowAll && cors.AllowCredentials {
		return CORS{}, fmt.Errorf("cannot enable credentials with wildcard origin (*)")
	}

	cors.MaxAge = DefaultCORSMaxAge
	if raw.MaxAge != "" {
		if parsed, err := strconv.Atoi(raw.MaxAge); err == nil && parsed >= 0 {
			cors.MaxAge = parsed
		} else {
			logger.Warn().Str("value", raw.MaxAge).Msg("invalid CORS_MAX_AGE, using default")
		}
	}

	logger.Debug().
		Strs("allowed_origins", cors.AllowedOrigins).
		Bool("allow_all", cors.AllowAll).
		Int("max_age", cors.MaxAge).
		Msg("CORS configuration applied")
	return cors, nil
}
