package config

import "time"

const (
	IdentityModeHTTP = "http"
	IdentityModeFake = "fake"
)

type IdentityConfig interface {
	GetIdentityMode() string
	GetIdentityBaseURL() string
	GetIdentityTimeout() time.Duration
	GetFakeIdentityLatency() time.Duration
	GetFakeIdentitySecret() string
}

type Identity struct{}

var _ IdentityConfig = Identity{}

// GetIdentityMode selects the credential transport: "http" talks to the identity
// API, "fake" runs the in-process identity backend.
func (Identity) GetIdentityMode() string {
	return GetEnv("IDENTITY_MODE", IdentityModeHTTP)
}

func (Identity) GetIdentityBaseURL() string {
	return GetEnv("IDENTITY_BASE_URL", "http://localhost:8080")
}

func (Identity) GetIdentityTimeout() time.Duration {
	return GetDuration("IDENTITY_TIMEOUT", 10*time.Second)
}

func (Identity) GetFakeIdentityLatency() time.Duration {
	return GetDuration("FAKE_IDENTITY_LATENCY", 0)
}

func (Identity) GetFakeIdentitySecret() string {
	return GetEnv("FAKE_IDENTITY_SECRET", "studio-tarjimon-dev-secret")
}
