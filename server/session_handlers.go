package server

import (
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/OlmosJT/studio-tarjimon-io/auth"
	"github.com/OlmosJT/studio-tarjimon-io/identity"
	"github.com/OlmosJT/studio-tarjimon-io/session"
)

// authView is the JSON answer of the auth endpoints
type authView struct {
	session.Snapshot
	Redirect string `json:"redirect,omitempty"`
}

// IndexHandler sends the browser to the login page
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
	}
}

// LoginPageHandler describes the login page: the error carried over from a
// failed attempt and where Google sign-in starts.
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"error":      r.URL.Query().Get("error"),
			"google_url": RouteAuthGoogle,
		})
	}
}

func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds identity.LoginCredentials
		err := decodeBody(r, &creds, func(form url.Values) {
			creds.Email = form.Get("email")
			creds.Password = form.Get("password")
		})
		if err != nil {
			writeJSONError(w, "invalid_request", "malformed request body", http.StatusBadRequest)
			return
		}

		ctl, nav := s.newController(w, r)
		ok := ctl.Login(r.Context(), creds)
		respondAuth(w, r, ctl, nav, ok, http.StatusUnauthorized)
	}
}

func (s *Server) RegisterSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds identity.RegisterCredentials
		err := decodeBody(r, &creds, func(form url.Values) {
			creds.Email = form.Get("email")
			creds.Password = form.Get("password")
			creds.FirstName = form.Get("firstName")
			creds.LastName = form.Get("lastName")
		})
		if err != nil {
			writeJSONError(w, "invalid_request", "malformed request body", http.StatusBadRequest)
			return
		}

		ctl, nav := s.newController(w, r)
		ok := ctl.Register(r.Context(), creds)
		respondAuth(w, r, ctl, nav, ok, http.StatusConflict)
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctl, nav := s.newController(w, r)
		ctl.Logout(r.Context())
		respondAuth(w, r, ctl, nav, true, http.StatusOK)
	}
}

// RefreshHandler rotates the token pair held in the cookies
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctl, _ := s.newController(w, r)
		if !ctl.RefreshUserToken(r.Context()) {
			writeJSON(w, http.StatusUnauthorized, map[string]bool{"refreshed": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"refreshed": true})
	}
}

// GoogleLoginHandler starts Google sign-in. With a Google client configured
// the BFF runs the code flow itself, otherwise the identity backend does.
func (s *Server) GoogleLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var target string
		if s.deps.Google != nil {
			authURL, err := s.deps.Google.Begin(r.URL.Query().Get("return_url"))
			if err != nil {
				log.Err(err).Msg("failed to start google sign-in")
				redirectWithError(w, r, RouteLogin, auth.MsgGoogleSignInFailed)
				return
			}
			target = authURL
		} else {
			ctl, nav := s.newController(w, r)
			if err := ctl.LoginWithGoogle(); err != nil {
				writeJSONError(w, "server_error", err.Error(), http.StatusInternalServerError)
				return
			}
			target = nav.external
		}

		if wantsJSON(r) {
			writeJSON(w, http.StatusOK, map[string]string{"redirect": target})
			return
		}
		http.Redirect(w, r, target, http.StatusFound)
	}
}

// GoogleCallbackHandler completes the code flow started by GoogleLoginHandler
// and signs in with the verified ID token.
func (s *Server) GoogleCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Google == nil {
			writeJSONError(w, "not_found", "google sign-in is not configured", http.StatusNotFound)
			return
		}

		query := r.URL.Query()
		if providerErr := query.Get("error"); providerErr != "" {
			log.Debug().Str("error", providerErr).Msg("google sign-in cancelled")
			redirectWithError(w, r, RouteLogin, auth.MsgGoogleSignInFailed)
			return
		}

		result, err := s.deps.Google.Complete(r.Context(), query.Get("state"), query.Get("code"))
		if err != nil {
			log.Warn().Err(err).Msg("google callback rejected")
			redirectWithError(w, r, RouteLogin, auth.MsgGoogleSignInFailed)
			return
		}

		ctl, nav := s.newController(w, r)
		ok := ctl.LoginWithGoogleIDToken(r.Context(), result.RawIDToken)
		if ok && result.ReturnURL != "" {
			nav.target = result.ReturnURL
		}
		respondAuth(w, r, ctl, nav, ok, http.StatusUnauthorized)
	}
}

// TokenCallbackHandler accepts the token pair the identity backend hands back
// after its own Google flow.
func (s *Server) TokenCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		ctl, nav := s.newController(w, r)
		ok := ctl.CompleteCallback(r.Context(), query.Get("access_token"), query.Get("refresh_token"))
		respondAuth(w, r, ctl, nav, ok, http.StatusUnauthorized)
	}
}

// SessionHandler reconciles the cookies and reports the session
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctl, _ := s.newController(w, r)
		ctl.InitUser(r.Context())
		writeJSON(w, http.StatusOK, ctl.State().Snapshot())
	}
}

// respondAuth finishes an auth operation. Scripts get the session view, forms
// follow the controller's navigation.
func respondAuth(w http.ResponseWriter, r *http.Request, ctl *auth.Controller, nav *navigator, ok bool, failStatus int) {
	if wantsJSON(r) {
		status := http.StatusOK
		if !ok {
			status = failStatus
		}
		writeJSON(w, status, authView{Snapshot: ctl.State().Snapshot(), Redirect: nav.target})
		return
	}

	if !ok {
		redirectWithError(w, r, RouteLogin, ctl.State().ErrorMessage())
		return
	}
	target := nav.target
	if target == "" {
		target = "/"
	}
	redirectSuccess(w, r, target)
}
