package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/juliog922/chatlink-v2/internal/domain"
	"github.com/juliog922/chatlink-v2/internal/http/response"
	"github.com/juliog922/chatlink-v2/pkg/logger"
)

func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "list users failed", "error", err)
		response.InternalError(w, "failed to list users")
		return
	}

	logger.InfoContext(r.Context(), "users fetched", "count", len(users))
	response.WriteJSON(w, http.StatusOK, users)
}

func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	id, err := h.users.Create(r.Context(), &req)
	if err != nil {
		var (
			conflict   *domain.ConflictError
			validation *domain.ValidationError
		)
		switch {
		case errors.As(err, &validation):
			response.BadRequest(w, validation.Message)
		case errors.As(err, &conflict):
			response.Conflict(w, conflict.Message)
		default:
			logger.ErrorContext(r.Context(), "create user failed", "error", err)
			response.InternalError(w, "failed to create user")
		}
		return
	}

	logger.InfoContext(r.Context(), "user created", "user_id", id)
	response.WriteJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// DeleteUser runs the deletion saga: remote session cleanup before the
// local row goes away.
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid user id")
		return
	}

	err = h.users.Delete(r.Context(), id, r.Header.Get("X-Auth"))
	if err == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var rejected *domain.UpstreamRejectedError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, "not found")
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		logger.ErrorContext(r.Context(), "device service unreachable", "error", err)
		response.BadGateway(w, err.Error())
	case errors.As(err, &rejected):
		logger.ErrorContext(r.Context(), "device delete rejected", "status", rejected.Status)
		response.BadGateway(w, err.Error())
	default:
		logger.ErrorContext(r.Context(), "user delete failed", "error", err)
		response.InternalError(w, err.Error())
	}
}
