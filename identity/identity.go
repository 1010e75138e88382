package identity

import (
	"context"
	"strings"
)

// RoleType is the platform role of an authenticated user
type RoleType string

const (
	RoleTranslator RoleType = "TRANSLATOR"
	RoleReader     RoleType = "READER"
	RoleAdmin      RoleType = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r RoleType) Valid() bool {
	switch r {
	case RoleTranslator, RoleReader, RoleAdmin:
		return true
	}
	return false
}

// User is the authenticated identity's profile. It is replaced wholesale on
// every successful auth response and never patched field by field.
type User struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	AvatarURL string   `json:"avatar_url,omitempty"`
	Role      RoleType `json:"role"`
}

// DisplayName joins the first and last name.
func (u User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

type LoginCredentials struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

type RegisterCredentials struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// AuthResponse is returned by login, registration, Google exchange and refresh.
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Transport performs the network calls against the identity backend. It holds
// no session logic; failures are opaque errors from internal/errors.
type Transport interface {
	Login(ctx context.Context, credentials LoginCredentials) (*AuthResponse, error)
	Register(ctx context.Context, credentials RegisterCredentials) (*AuthResponse, error)
	FetchUser(ctx context.Context, accessToken string) (*User, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)
	LoginWithGoogle(ctx context.Context, idToken string) (*AuthResponse, error)
	GoogleAuthURL() string
}
