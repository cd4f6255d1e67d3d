package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar       = "PORT"
	appNameVar       = "APP_NAME"
	publicBaseURLVar = "PUBLIC_BASE_URL"
	apiBaseURLVar    = "API_BASE_URL"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "3000")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Leetly")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetPublicBaseURL returns the externally visible base URL of this gateway.
// It is used to build the OAuth redirect URI.
func (EnvVars) GetPublicBaseURL() string {
	return GetEnv(publicBaseURLVar, "http://localhost:3000")
}

// GetAPIBaseURL returns the base URL of the Leetly REST API that the
// gateway proxies authenticated requests to.
func (EnvVars) GetAPIBaseURL() string {
	return GetEnv(apiBaseURLVar, "http://localhost:8080")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
