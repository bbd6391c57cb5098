package funnelwire

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/funnelwire/funnelwire-go/wire"
)

const (
	DefaultEndpoint   = "https://api.funnelwire.com/api"
	DefaultAPIVersion = "1.0.6"
)

// Config is the read-only client configuration. DeveloperMode gates which
// action categories are permitted: submissions need true, data-export and
// content reads need false.
type Config struct {
	AppID         string
	ClientKey     string
	APIVersion    string
	DeveloperMode bool

	// Endpoint is where the default HTTP transport posts; ignored when a
	// custom transport is injected.
	Endpoint string

	// ActionsPerRequest caps batch pages. Zero means
	// wire.DefaultActionsPerRequest.
	ActionsPerRequest int
}

// ConfigFromEnv loads config from the environment, reading a .env file
// first when present.
func ConfigFromEnv() Config {
	_ = godotenv.Load()
	return Config{
		AppID:             getEnv("FUNNELWIRE_APP_ID", ""),
		ClientKey:         getEnv("FUNNELWIRE_CLIENT_KEY", ""),
		APIVersion:        getEnv("FUNNELWIRE_API_VERSION", DefaultAPIVersion),
		DeveloperMode:     getBoolEnv("FUNNELWIRE_DEVELOPER_MODE", false),
		Endpoint:          getEnv("FUNNELWIRE_ENDPOINT", DefaultEndpoint),
		ActionsPerRequest: getIntEnv("FUNNELWIRE_ACTIONS_PER_REQUEST", wire.DefaultActionsPerRequest),
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}
