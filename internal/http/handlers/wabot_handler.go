package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/juliog922/chatlink-v2/internal/http/response"
	"github.com/juliog922/chatlink-v2/pkg/logger"
)

type loginQRRequest struct {
	To string `json:"to"`
}

// WabotLoginQR forwards a QR-login trigger to the device-session
// service and relays its response verbatim.
func (h *Handlers) WabotLoginQR(w http.ResponseWriter, r *http.Request) {
	var req loginQRRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	result, err := h.forwarder.ForwardLoginQR(r.Context(), req.To, r.Header.Get("X-Auth"))
	if err != nil {
		logger.ErrorContext(r.Context(), "loginqr forward failed", "error", err)
		response.BadGateway(w, err.Error())
		return
	}

	if strings.HasPrefix(result.ContentType, "application/json") {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(result.Status)
	w.Write(result.Body)
}
