package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	req := require.New(t)
	t.Setenv("JWT_SECRET", "0123456789abcdef")
	t.Setenv("ALLOWED_ORIGINS", "polls.example.com, *.example.org ,")

	cfg, err := Load()

	req.NoError(err)
	req.Equal(DriverBadger, cfg.StoreDriver)
	req.Equal(8, cfg.NumberOfWorkers)
	req.Equal(3*time.Second, cfg.StoreTimeout)
	req.Equal(24*time.Hour, cfg.AuthTokenDuration)
	req.Equal("localhost:8080", cfg.Address())
	req.Equal([]string{"polls.example.com", "*.example.org"}, cfg.OriginPatterns())
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()

	require.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		StoreDriver:          DriverBadger,
		BadgerFilepath:       "/tmp/badger",
		NumberOfWorkers:      4,
		BufferSize:           10,
		ConnectionBufferSize: 10,
		MetricInterval:       time.Second,
		JWTSecret:            "0123456789abcdef",
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid badger", mutate: func(c *Config) {}},
		{name: "valid postgres", mutate: func(c *Config) {
			c.StoreDriver = DriverPostgres
			c.DatabaseURL = "postgres://localhost/polls"
		}},
		{name: "postgres without url", mutate: func(c *Config) { c.StoreDriver = DriverPostgres }, wantErr: "DATABASE_URL"},
		{name: "unknown driver", mutate: func(c *Config) { c.StoreDriver = "mongo" }, wantErr: "unknown STORE_DRIVER"},
		{name: "no workers", mutate: func(c *Config) { c.NumberOfWorkers = 0 }, wantErr: "NUMBER_OF_WORKERS"},
		{name: "short secret", mutate: func(c *Config) { c.JWTSecret = "short" }, wantErr: "JWT_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()

			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}
