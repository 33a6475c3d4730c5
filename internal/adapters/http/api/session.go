package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/podium/internal/domain/session"
	"github.com/okian/podium/pkg/logger"
)

// SessionDependencies defines the interface for login and token checks.
type SessionDependencies interface {
	TokenVerifier
	Login(ctx context.Context, code string) (session.Session, error)
}

// SessionHandler handles login requests.
type SessionHandler struct {
	deps SessionDependencies
	log  logger.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps SessionDependencies, log logger.Logger) *SessionHandler {
	return &SessionHandler{deps: deps, log: log}
}

type loginRequest struct {
	Code string `json:"code"`
}

type userResponse struct {
	Role string `json:"role"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// HandleLogin handles POST /api/login.
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "api.login"
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			fail(r.Context(), w, h.log, op, WrapKind(op, ErrBadRequest, err))
			return
		}
		// An unreadable body carries no code, so it cannot match.
		h.log.Debug(r.Context(), "login body not decodable", logger.Error(err))
		req.Code = ""
	}
	sess, err := h.deps.Login(r.Context(), req.Code)
	if errors.Is(err, session.ErrAuthentication) {
		writeError(w, http.StatusUnauthorized, "Invalid code")
		return
	}
	if err != nil {
		fail(r.Context(), w, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Token: sess.Token,
		User:  userResponse{Role: sess.Role},
	})
}

// HandleMe handles GET /api/me. It runs behind RequireAuth.
func (h *SessionHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	const op = "api.me"
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		fail(r.Context(), w, h.log, op, NewKind(op, ErrUnauthorized))
		return
	}
	writeJSON(w, http.StatusOK, userResponse{Role: claims.Role})
}
