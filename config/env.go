package config

import (
	"os"
	"strings"
)

// Environment accessors with the defaults of a local development setup.

func ListenPort() string {
	if port := os.Getenv("POVERTY_LISTEN_PORT"); port != "" {
		return port
	}
	return "3000"
}

// ScantAddress is the base URL of the document scanning service.
func ScantAddress() string {
	if addr := os.Getenv("SCANT_ADDRESS"); addr != "" {
		return addr
	}
	return "http://localhost:3100"
}

func RootURL() string {
	if url := os.Getenv("POVERTY_ROOT_URL"); url != "" {
		return url
	}
	return "http://localhost:" + ListenPort()
}

func GoogleClientID() string {
	return os.Getenv("POVERTY_CLIENT_ID")
}

func GoogleClientSecret() string {
	return os.Getenv("POVERTY_CLIENT_SECRET")
}

// AuthBypass disables the auth middleware. Development only.
func AuthBypass() bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv("POVERTY_AUTH_BYPASS")))
	return v == "1" || v == "true" || os.Getenv("GO_ENV") == "development"
}
