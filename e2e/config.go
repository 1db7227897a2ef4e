package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// LIVE_POLL_ADDR is the base URL of a running server, e.g. http://localhost:8080
	Addr string `envconfig:"LIVE_POLL_ADDR"`
	// E2E_DEBUG_JSON dumps every HTTP response body
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
