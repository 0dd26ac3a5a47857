// Package authapi wires the sign-in / refresh / sign-out / me endpoints and
// the bearer-token gate to the session service.
package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"casavia/internal/auth/session"
)

// Handler serves the auth endpoints.
type Handler struct {
	log      *slog.Logger
	cfg      Config
	sessions *session.Service
	users    session.UserStore
}

// NewHandler constructs an auth Handler.
func NewHandler(log *slog.Logger, cfg Config, sessions *session.Service, users session.UserStore) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{log: log, cfg: cfg, sessions: sessions, users: users}
}

// Enforced reports whether the auth gate is active.
func (h *Handler) Enforced() bool { return h.sessions.Enforced() }

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/signin", h.handleSignIn)
	mux.HandleFunc("GET /api/refreshToken", h.handleRefresh)
	mux.HandleFunc("GET /api/me", h.handleMe)
	mux.Handle("POST /api/signout", h.RequireAuth(http.HandlerFunc(h.handleSignOut)))
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	issued, err := h.sessions.SignIn(r.Context(), req.Identifier, req.Secret)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			WriteMessage(w, http.StatusUnauthorized, msgInvalidCredentials)
			return
		}
		h.log.Error("auth.signin.fail", "err", err)
		WriteMessage(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	// The refresh token travels only in this HTTP-only cookie; page script
	// never sees it.
	h.setRefreshCookie(w, issued.RefreshToken, issued.RefreshExp)

	h.log.Info("auth.signin", "user_id", issued.User.ID)
	writeJSON(w, http.StatusOK, h.authResponse(issued.AccessToken, issued.User))
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	refreshToken, ok := refreshTokenFromCookie(r)
	if !ok {
		WriteMessage(w, http.StatusForbidden, msgUnauthorized)
		return
	}

	issued, err := h.sessions.Refresh(r.Context(), refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidToken) {
			WriteMessage(w, http.StatusForbidden, msgUnauthorized)
			return
		}
		h.log.Error("auth.refresh.fail", "err", err)
		WriteMessage(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeJSON(w, http.StatusOK, h.authResponse(issued.AccessToken, issued.User))
}

// handleMe does its own bearer extraction rather than sitting behind the
// gate, so it can echo the presented token back in the enforcement-aware
// response shape.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	tok := bearerToken(r)
	if tok == "" {
		WriteMessage(w, http.StatusUnauthorized, msgTokenRequired)
		return
	}

	claims, err := h.sessions.VerifyAccess(tok, time.Now().UTC())
	if err != nil {
		WriteMessage(w, http.StatusForbidden, msgUnauthorized)
		return
	}

	user, err := h.users.FindUserByID(claims.UserID)
	if err != nil {
		WriteMessage(w, http.StatusForbidden, msgUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, h.authResponse(tok, user))
}

func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	// Stateless tokens cannot be revoked server-side; sign-out is a cookie
	// clear and the client drops its access token.
	h.clearRefreshCookie(w)

	if claims, ok := PrincipalFromContext(r.Context()); ok {
		h.log.Info("auth.signout", "user_id", claims.UserID)
	}
	WriteMessage(w, http.StatusOK, msgSignedOut)
}
