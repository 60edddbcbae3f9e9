package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songbook/internal/session"
	"github.com/desertthunder/songbook/internal/shared"
	"golang.org/x/time/rate"
)

// TokenResponse is the body of a successful password grant.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// TokenError is the RFC 6749 error body.
type TokenError struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// TokenHandler issues mock tokens through the OAuth2 resource owner password grant.
// Implements the Handler interface for registration with a Router.
type TokenHandler struct {
	ttl     time.Duration
	now     func() time.Time
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewTokenHandler creates a token endpoint. A nil now uses [time.Now]; a nil limiter disables throttling.
func NewTokenHandler(ttl time.Duration, now func() time.Time, limiter *rate.Limiter, logger *log.Logger) *TokenHandler {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &TokenHandler{ttl: ttl, now: now, limiter: limiter, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *TokenHandler) Routes() []string {
	return []string{"POST /oauth/token"}
}

// ServeHTTP validates the grant and answers with a bearer token or an OAuth2 error body.
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	if h.limiter != nil && !h.limiter.Allow() {
		w.Header().Set("Retry-After", "1")
		writeTokenError(w, http.StatusTooManyRequests, "rate_limited", "too many token requests")
		return
	}

	if err := r.ParseForm(); err != nil {
		writeTokenError(w, http.StatusBadRequest, "invalid_request", "malformed form body")
		return
	}

	if grant := r.PostForm.Get("grant_type"); grant != "password" {
		writeTokenError(w, http.StatusBadRequest, "unsupported_grant_type", grant)
		return
	}

	username, password := r.PostForm.Get("username"), r.PostForm.Get("password")
	if username == "" || password == "" {
		writeTokenError(w, http.StatusBadRequest, "invalid_request", "username and password are required")
		return
	}

	m := session.NewManager(&session.MemoryStore{},
		session.WithTTL(h.ttl), session.WithClock(h.now), session.WithLogger(h.logger))

	user, token, err := m.IssueToken(username, password)
	if errors.Is(err, shared.ErrInvalidCredentials) {
		h.logger.Warn("token request rejected", "username", username)
		writeTokenError(w, http.StatusBadRequest, "invalid_grant", shared.InvalidCredentialsMessage)
		return
	} else if err != nil {
		h.logger.Error("token issue failed", "error", err)
		writeTokenError(w, http.StatusInternalServerError, "server_error", "")
		return
	}

	resp := TokenResponse{AccessToken: token, TokenType: "Bearer"}
	if s := m.Current(); s != nil {
		resp.ExpiresIn = int(s.ExpiresAt.Sub(h.now()) / time.Second)
	}

	h.logger.Info("issued token", "username", user.Username, "role", user.Role)
	writeJSON(w, http.StatusOK, resp)
}

func writeTokenError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, TokenError{Error: code, Description: description})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
