package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sessionsdev/user-auth-microservice/internal/api/shared"
	"github.com/sessionsdev/user-auth-microservice/internal/platform/logger"
	"github.com/sessionsdev/user-auth-microservice/internal/service"
)

// UserHandler handles the /users resource.
type UserHandler struct {
	users  service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users service.UserService, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		users:  users,
		logger: logger.With("component", "user_handler"),
	}
}

// CreateUser handles POST /users.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	id, err := h.users.AddUser(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, shared.MessageResponse{
		Message: fmt.Sprintf("%s was added!", req.Email),
		ID:      id,
	})
}

// ListUsers handles GET /users.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	views, err := h.users.GetAllUsers(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, views)
}

// GetUser handles GET /users/{id}.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUserID(w, r)
	if !ok {
		return
	}

	view, err := h.users.GetUserByID(r.Context(), id)
	if err != nil {
		h.handleUserError(w, r, id, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

// UpdateUser handles PUT /users/{id}.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUserID(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	err := h.users.UpdateUser(r.Context(), id, service.UpdateUserInput{
		Username: &req.Username,
		Email:    &req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.handleUserError(w, r, id, err)
		return
	}
	shared.RespondWithMessage(w, r, http.StatusOK, fmt.Sprintf("%d was updated!", id))
}

// DeleteUser handles DELETE /users/{id}.
// The account is read first so the response can name its email.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUserID(w, r)
	if !ok {
		return
	}

	view, err := h.users.GetUserByID(r.Context(), id)
	if err != nil {
		h.handleUserError(w, r, id, err)
		return
	}
	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		h.handleUserError(w, r, id, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("user removed via API", "user_id", id)
	shared.RespondWithMessage(w, r, http.StatusOK, fmt.Sprintf("%s was removed!", view.Email))
}

func (h *UserHandler) handleUserError(w http.ResponseWriter, r *http.Request, id int64, err error) {
	if errors.Is(err, service.ErrUserNotFound) {
		HandleAPIError(w, r, err, userNotFoundMessage(id))
		return
	}
	HandleAPIError(w, r, err, "")
}

// Ping handles GET /ping.
func Ping(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, PingResponse{Status: "success", Message: "pong!"})
}
