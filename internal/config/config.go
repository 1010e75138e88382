package config

import "time"

type Config interface {
	EnvConfig
	IdentityConfig
	SessionConfig
	GoogleConfig
	CacheConfig
	CorsConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetBaseURL() string
	GetDataLatency() time.Duration
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Identity
	Session
	Google
	Cache
	Cors
}

// New returns the configuration backed by environment variables and, when
// one was loaded, the values of the YAML config file.
func New() Config {
	return mainConfig{}
}

// Load reads the optional YAML file at path and returns the configuration.
// A missing file is not an error; the defaults apply.
func Load(path string) (Config, error) {
	if err := LoadFile(path); err != nil {
		return nil, err
	}
	return New(), nil
}
