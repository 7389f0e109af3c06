package handler

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/evyataryagoni/ipcheck/internal/logger"
	"github.com/evyataryagoni/ipcheck/internal/service"
	"github.com/evyataryagoni/ipcheck/internal/view"
)

// IPHandler handles the three views of the caller's address
// This is the handler layer - it deals with HTTP concerns only
//
// Responsibilities:
//   - Call service methods
//   - Format HTTP responses (HTML, JSON, plain text)
//   - NO business logic (that's in the service layer)
//
// None of the views produce a non-200 status of their own.
type IPHandler struct {
	service *service.IPService
	logger  *logger.Logger
}

// NewIPHandler creates a new IP handler with the given service
func NewIPHandler(service *service.IPService, log *logger.Logger) *IPHandler {
	if log == nil {
		log = logger.NewDefault()
	}
	return &IPHandler{
		service: service,
		logger:  log.WithComponent("IPHandler"),
	}
}

// Index handles GET / and every unmatched route
// @Summary      HTML page
// @Description  Renders a page showing the caller's IP address
// @Tags         IP Check
// @Produce      html
// @Success      200  {string}  string  "HTML page"
// @Router       / [get]
func (h *IPHandler) Index(w http.ResponseWriter, r *http.Request) {
	ip := h.service.ClientIP(r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.Index(ip).Render(r.Context(), w); err != nil {
		// Headers are already sent; nothing else to do for the client
		h.logger.Error().Err(err).Str("ip", ip).Msg("Failed to render index page")
	}
}

// API handles GET /api
// @Summary      Request details
// @Description  Returns the caller's IP address, headers, connection hints and optional geolocation
// @Tags         IP Check
// @Produce      json
// @Success      200  {object}  models.RequestInfo
// @Router       /api [get]
func (h *IPHandler) API(w http.ResponseWriter, r *http.Request) {
	info := h.service.Inspect(r.Context(), r)
	h.respondJSON(w, http.StatusOK, info)
}

// Plain handles GET /plain
// @Summary      Plain IP
// @Description  Returns only the caller's IP address as the response body
// @Tags         IP Check
// @Produce      plain
// @Success      200  {string}  string  "203.0.113.9"
// @Router       /plain [get]
func (h *IPHandler) Plain(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(h.service.ClientIP(r)))
}

// respondJSON writes a JSON response with the given status code
func (h *IPHandler) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(body)
}
