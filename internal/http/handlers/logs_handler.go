package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/juliog922/chatlink-v2/internal/dockerlogs"
	"github.com/juliog922/chatlink-v2/internal/domain"
	"github.com/juliog922/chatlink-v2/internal/http/response"
	"github.com/juliog922/chatlink-v2/pkg/logger"
)

type servicesResponse struct {
	Services []string `json:"services"`
}

// LogServices lists the distinct compose service names known to the
// container runtime, running or stopped.
func (h *Handlers) LogServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.directory.ListServiceNames(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "list services failed", "error", err)
		response.BadGateway(w, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, servicesResponse{Services: services})
}

type logViewResponse struct {
	Service string   `json:"service"`
	Date    string   `json:"date"`
	Count   int      `json:"count"`
	Lines   []string `json:"lines"`
}

// LogView streams one service's logs for a UTC calendar day, filtered
// by an optional substring pattern and capped at a line limit.
func (h *Handlers) LogView(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	svc := q.Get("service")
	if svc == "" {
		response.BadRequest(w, "service is required")
		return
	}

	dateStr := q.Get("date")
	day, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		response.BadRequest(w, "date must be YYYY-MM-DD")
		return
	}

	limit := dockerlogs.DefaultLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "limit must be an integer")
			return
		}
		limit = dockerlogs.ClampLimit(n, true)
	}

	containerID, err := h.directory.ResolveService(r.Context(), svc)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.NotFound(w, "service not found")
			return
		}
		logger.ErrorContext(r.Context(), "resolve service failed", "service", svc, "error", err)
		response.BadGateway(w, err.Error())
		return
	}

	lines, err := h.filter.Run(r.Context(), containerID, day, q.Get("pattern"), limit)
	if err != nil {
		logger.ErrorContext(r.Context(), "log view failed", "service", svc, "error", err)
		response.BadGateway(w, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, logViewResponse{
		Service: svc,
		Date:    dateStr,
		Count:   len(lines),
		Lines:   lines,
	})
}
