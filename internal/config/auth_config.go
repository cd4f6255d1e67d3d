package config

import (
	"time"

	apperrors "github.com/atinroy/leetly-web/internal/errors"
)

type AuthConfig interface {
	GetIssuerURL() string
	GetClientID() string
	GetClientSecret() string
	GetSessionSecret() string
	GetSessionMaxAge() time.Duration
	GetRefreshSkew() time.Duration
	GetRefreshTimeout() time.Duration
}

type Auth struct{}

var _ AuthConfig = Auth{}

// GetIssuerURL returns the Keycloak realm issuer,
// e.g. "https://auth.example.com/realms/leetly"
func (Auth) GetIssuerURL() string {
	return GetEnv("KEYCLOAK_ISSUER", "")
}

func (Auth) GetClientID() string {
	return GetEnv("KEYCLOAK_CLIENT_ID", "")
}

// GetClientSecret returns the client secret. An empty value is valid and
// means the gateway is registered as a public client.
func (Auth) GetClientSecret() string {
	return GetEnv("KEYCLOAK_CLIENT_SECRET", "")
}

// GetSessionSecret returns the secret the session cookie keys are derived
// from. Signing and sealing keys are both derived from it via HKDF.
func (Auth) GetSessionSecret() string {
	return GetEnv("SESSION_SECRET", "")
}

func (Auth) GetSessionMaxAge() time.Duration {
	return getDurationEnv("SESSION_MAX_AGE", 30*24*time.Hour)
}

// GetRefreshSkew returns the safety margin before access token expiry at
// which a refresh is proactively attempted.
func (Auth) GetRefreshSkew() time.Duration {
	return 30 * time.Second
}

func (Auth) GetRefreshTimeout() time.Duration {
	return getDurationEnv("AUTH_REFRESH_TIMEOUT", 10*time.Second)
}

// ValidateAuth checks the required identity provider settings are present.
// The client secret is deliberately not required (public client mode).
func ValidateAuth(cfg AuthConfig) error {
	if cfg.GetIssuerURL() == "" {
		return apperrors.ErrMissingIssuer
	}
	if cfg.GetClientID() == "" {
		return apperrors.ErrMissingClientID
	}
	if cfg.GetSessionSecret() == "" {
		return apperrors.ErrMissingSessionSecret
	}
	return nil
}

func getDurationEnv(envVar string, defaultValue time.Duration) time.Duration {
	value := GetEnv(envVar, "")
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
