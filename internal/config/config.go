package config

type Config interface {
	EnvConfig
	AuthConfig
	GateConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetPublicBaseURL() string
	GetAPIBaseURL() string
}

type mainConfig struct {
	EnvVars
	Auth
	Gate
}

func New() Config {
	return mainConfig{}
}
