package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/alexedwards/argon2id"

	"github.com/juliog922/chatlink-v2/internal/http/response"
	"github.com/juliog922/chatlink-v2/pkg/logger"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login checks the static operator credentials and hands out the
// shared-secret token the rest of the API expects in X-Auth.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if req.Username != h.config.Auth.AppUser || !h.passwordOK(req.Password) {
		logger.WarnContext(r.Context(), "login failed", "username", req.Username)
		response.Unauthorized(w, "invalid credentials")
		return
	}

	logger.InfoContext(r.Context(), "login ok", "username", req.Username)
	response.WriteJSON(w, http.StatusOK, loginResponse{Token: h.config.Auth.Token})
}

// passwordOK prefers the argon2id hash when configured; the plaintext
// APP_PASS comparison stays as the dev fallback.
func (h *Handlers) passwordOK(password string) bool {
	if hash := h.config.Auth.PasswordHash; hash != "" {
		match, err := argon2id.ComparePasswordAndHash(password, hash)
		return err == nil && match
	}
	return h.config.Auth.AppPass != "" && password == h.config.Auth.AppPass
}
