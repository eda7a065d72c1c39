package api

import (
	"log/slog"
	"net/http"

	"github.com/sessionsdev/user-auth-microservice/internal/api/shared"
	"github.com/sessionsdev/user-auth-microservice/internal/platform/logger"
	"github.com/sessionsdev/user-auth-microservice/internal/service"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	users  service.UserService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(users service.UserService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		users:  users,
		logger: logger.With("component", "auth_handler"),
	}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	pair, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tokenResponse(pair))
}

// RefreshToken handles POST /auth/refresh.
// Every token failure is reported as "Invalid token".
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	pair, err := h.users.RefreshTokens(r.Context(), req.RefreshToken)
	if err != nil {
		msg := ""
		if MapErrorToStatusCode(err) == http.StatusUnauthorized {
			msg = MsgInvalidToken
		}
		HandleAPIError(w, r, err, msg)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("refreshed token pair")
	shared.RespondWithJSON(w, r, http.StatusOK, tokenResponse(pair))
}

// Status handles GET /auth/status. It must run behind the authentication
// middleware and returns the view of the calling user.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, MsgInvalidToken)
		return
	}

	view, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		// A valid token for a deleted account no longer identifies anyone.
		if MapErrorToStatusCode(err) == http.StatusNotFound {
			shared.RespondWithError(w, r, http.StatusUnauthorized, MsgInvalidToken)
			return
		}
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, view)
}
