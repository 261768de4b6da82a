package handler

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/brass-engine/internal/auth"
	"github.com/freeeve/brass-engine/internal/repository"
)

const stateCookie = "oauth_state"

// AuthHandler handles OAuth2 login flows and token refresh.
type AuthHandler struct {
	google   *auth.OAuthProvider
	jwtMgr   *auth.JWTManager
	userRepo repository.UserRepository
	devLogin bool
}

// NewAuthHandler creates an AuthHandler. devLogin enables GET /auth/dev.
func NewAuthHandler(google *auth.OAuthProvider, jwtMgr *auth.JWTManager, userRepo repository.UserRepository, devLogin bool) *AuthHandler {
	return &AuthHandler{google: google, jwtMgr: jwtMgr, userRepo: userRepo, devLogin: devLogin}
}

// GoogleLogin redirects to Google's consent screen, remembering the state
// in a short-lived cookie.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.google.Configured() {
		writeError(w, http.StatusNotFound, "google sign-in is not configured")
		return
	}
	state := randomState()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.google.LoginURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback completes the Google flow and returns a token pair.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if c, err := r.Cookie(stateCookie); err != nil || c.Value == "" || c.Value != q.Get("state") {
		writeError(w, http.StatusBadRequest, "state mismatch")
		return
	}
	code := q.Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing code parameter")
		return
	}

	info, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		log.Warn().Err(err).Msg("Google exchange failed")
		writeError(w, http.StatusUnauthorized, "oauth exchange failed")
		return
	}

	user, err := h.userRepo.Upsert(r.Context(), h.google.Name(), info.ID, info.Name, info.Picture)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upsert Google user")
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	h.issue(w, user.ID)
}

// RefreshToken exchanges a refresh token for a new token pair.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims, err := h.jwtMgr.ValidateKind(req.RefreshToken, auth.RefreshToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	h.issue(w, claims.UserID)
}

// DevLogin upserts a user named by ?name= and returns a token pair.
func (h *AuthHandler) DevLogin(w http.ResponseWriter, r *http.Request) {
	if !h.devLogin {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing name parameter")
		return
	}

	user, err := h.userRepo.Upsert(r.Context(), "dev", "dev-"+name, name, "")
	if err != nil {
		log.Error().Err(err).Str("name", name).Msg("Failed to upsert dev user")
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	h.issue(w, user.ID)
}

func (h *AuthHandler) issue(w http.ResponseWriter, userID string) {
	tokens, err := h.jwtMgr.GenerateTokenPair(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate tokens")
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

func randomState() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
