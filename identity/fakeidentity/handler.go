package fakeidentity

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/OlmosJT/studio-tarjimon-io/identity"
	"github.com/OlmosJT/studio-tarjimon-io/internal/errors"
)

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// Handler serves the identity REST API on top of the service.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+identity.RouteLogin, s.loginHandler)
	mux.HandleFunc("POST "+identity.RouteRegister, s.registerHandler)
	mux.HandleFunc("GET "+identity.RouteMe, s.meHandler)
	mux.HandleFunc("POST "+identity.RouteRefresh, s.refreshHandler)
	mux.HandleFunc("POST "+identity.RouteGoogleLogin, s.googleLoginHandler)
	mux.HandleFunc("GET "+identity.RouteGoogleAuthURL, s.googleAuthorizeHandler)
	return mux
}

func (s *Service) loginHandler(w http.ResponseWriter, r *http.Request) {
	var creds identity.LoginCredentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	resp, err := s.Login(r.Context(), creds)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) registerHandler(w http.ResponseWriter, r *http.Request) {
	var creds identity.RegisterCredentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	resp, err := s.Register(r.Context(), creds)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Service) meHandler(w http.ResponseWriter, r *http.Request) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	user, err := s.FetchUser(r.Context(), parts[1])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Service) refreshHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "refresh_token is required")
		return
	}
	resp, err := s.RefreshToken(r.Context(), body.RefreshToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) googleLoginHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDToken string `json:"id_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.IDToken == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id_token is required")
		return
	}
	resp, err := s.LoginWithGoogle(r.Context(), body.IDToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// googleAuthorizeHandler simulates the backend's Google round trip: it signs in
// the Google demo account and redirects to the callback URL with the tokens.
func (s *Service) googleAuthorizeHandler(w http.ResponseWriter, r *http.Request) {
	if s.callbackURL == "" {
		writeError(w, http.StatusNotFound, "not_found", "google sign-in is not configured")
		return
	}
	resp, err := s.googleSession(identity.User{
		Email:     googleDemoEmail,
		FirstName: "Google",
		LastName:  "User",
		AvatarURL: "https://via.placeholder.com/150",
		Role:      identity.RoleTranslator,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	target, err := url.Parse(s.callbackURL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "invalid callback URL")
		return
	}
	q := target.Query()
	q.Set("access_token", resp.AccessToken)
	q.Set("refresh_token", resp.RefreshToken)
	target.RawQuery = q.Encode()
	http.Redirect(w, r, target.String(), http.StatusFound)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errors.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
	case errors.Is(err, errors.ErrRegistrationConflict):
		writeError(w, http.StatusConflict, "conflict", "email already registered")
	case errors.Is(err, errors.ErrTokenExpired):
		writeError(w, http.StatusUnauthorized, "token_expired", "access token expired")
	case errors.Is(err, errors.ErrInvalidToken),
		errors.Is(err, errors.ErrRefreshInvalid),
		errors.Is(err, errors.ErrRefreshTokenExpired):
		writeError(w, http.StatusUnauthorized, "invalid_token", err.Error())
	case errors.Is(err, errors.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, errors.ErrNetwork):
		writeError(w, http.StatusServiceUnavailable, "unavailable", "request cancelled")
	default:
		log.Err(err).Msg("fake identity request failed")
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, errorResponse{Error: code, ErrorDescription: description})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("failed to encode response")
	}
}
