package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 9090, cfg.GRPCPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.HTTPAddr())
	assert.Equal(t, ":9090", cfg.GRPCAddr())
	assert.False(t, cfg.CORS.Enabled)
	assert.Empty(t, cfg.DefaultsPaths().ATP)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ATP_DEFAULTS_FILE", "/etc/adtech/atp.yaml")
	t.Setenv("ORGANIZATION_DEFAULTS_FILE", "/etc/adtech/org.yaml")
	t.Setenv("PROPERTY_DEFAULTS_FILE", "/etc/adtech/property.yaml")
	t.Setenv("END_USER_DEVICE_DEFAULTS_FILE", "/etc/adtech/device.yaml")
	t.Setenv("NETWORKING_DEFAULTS_FILE", "/etc/adtech/networking.yaml")
	t.Setenv("TRANSMISSION_RATE_FILE", "/etc/adtech/rates.yaml")
	t.Setenv("DATA_DIR", "/srv/data")
	t.Setenv("PORT", "8000")
	t.Setenv("GRPC_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)

	paths := cfg.DefaultsPaths()
	assert.Equal(t, "/etc/adtech/atp.yaml", paths.ATP)
	assert.Equal(t, "/etc/adtech/org.yaml", paths.Organization)
	assert.Equal(t, "/etc/adtech/property.yaml", paths.Property)
	assert.Equal(t, "/etc/adtech/device.yaml", paths.EndUserDevice)
	assert.Equal(t, "/etc/adtech/networking.yaml", paths.Networking)
	assert.Equal(t, "/etc/adtech/rates.yaml", paths.TransmissionRate)
	assert.Equal(t, "/srv/data", cfg.DataDir)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 9000, cfg.GRPCPort)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name          string
		env           map[string]string
		expectedError string
	}{
		{
			name:          "Port not a number",
			env:           map[string]string{"PORT": "http"},
			expectedError: "parse env",
		},
		{
			name:          "Port out of range",
			env:           map[string]string{"PORT": "70000"},
			expectedError: "invalid PORT",
		},
		{
			name:          "GRPC port out of range",
			env:           map[string]string{"GRPC_PORT": "0"},
			expectedError: "invalid GRPC_PORT",
		},
		{
			name:          "Same ports",
			env:           map[string]string{"PORT": "9090"},
			expectedError: "must differ",
		},
		{
			name:          "Bad log level",
			env:           map[string]string{"LOG_LEVEL": "chatty"},
			expectedError: "invalid log level",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(zerolog.Nop())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
		})
	}
}

func TestParseCORS(t *testing.T) {
	logger := zerolog.New(zerolog.NewConsoleWriter())

	tests := []struct {
		name          string
		env           map[string]string
		expectedError string
		validate      func(t *testing.T, cors CORS)
	}{
		{
			name: "Disabled",
			env:  map[string]string{"CORS_ALLOWED_ORIGINS": "a.com"},
			validate: func(t *testing.T, cors CORS) {
				assert.False(t, cors.Enabled)
				assert.Empty(t, cors.AllowedOrigins)
				assert.Zero(t, cors.MaxAge)
			},
		},
		{
			name: "Enabled Default",
			env:  map[string]string{"CORS_ENABLED": "true"},
			validate: func(t *testing.T, cors CORS) {
				assert.True(t, cors.Enabled)
				assert.False(t, cors.AllowAll)
				assert.Equal(t, DefaultCORSMaxAge, cors.MaxAge)
			},
		},
		{
			name: "Allowed Origins - Specific",
			env: map[string]string{
				"CORS_ENABLED":         "true",
				"CORS_ALLOWED_ORIGINS": "http://localhost:3000,https://app.example.com",
			},
			validate: func(t *testing.T, cors CORS) {
				assert.Equal(t, []string{"http://localhost:3000", "https://app.example.com"}, cors.AllowedOrigins)
			},
		},
		{
			name: "Allowed Origins - Mixed Wildcard",
			env: map[string]string{
				"CORS_ENABLED":         "true",
				"CORS_ALLOWED_ORIGINS": "foo.com, *, bar.com",
			},
			validate: func(t *testing.T, cors CORS) {
				assert.True(t, cors.AllowAll)
				assert.Equal(t, []string{"foo.com", "bar.com"}, cors.AllowedOrigins)
			},
		},
		{
			name: "Max Age - Valid",
			env:  map[string]string{"CORS_ENABLED": "true", "CORS_MAX_AGE": "3600"},
			validate: func(t *testing.T, cors CORS) {
				assert.Equal(t, 3600, cors.MaxAge)
			},
		},
		{
			name: "Max Age - Invalid",
			env:  map[string]string{"CORS_ENABLED": "true", "CORS_MAX_AGE": "-5"},
			validate: func(t *testing.T, cors CORS) {
				assert.Equal(t, DefaultCORSMaxAge, cors.MaxAge)
			},
		},
		{
			name: "Credentials - Case Insensitive",
			env:  map[string]string{"CORS_ENABLED": "true", "CORS_ALLOW_CREDENTIALS": "TRUE"},
			validate: func(t *testing.T, cors CORS) {
				assert.True(t, cors.AllowCredentials)
			},
		},
		{
			name: "Fatal - Wildcard + Credentials",
			env: map[string]string{
				"CORS_ENABLED":           "true",
				"CORS_ALLOWED_ORIGINS":   "*",
				"CORS_ALLOW_CREDENTIALS": "true",
			},
			expectedError: "cannot enable credentials with wildcard origin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cors, err := parseCORS(logger)

			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}
			require.NoError(t, err)
			tt.validate(t, cors)
		})
	}
}
