package cities

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/airwatch-bd/airwatch/internal/platform/httpx"
)

// Handler serves the catalog as JSON.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the catalog API routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/api/cities", h.list)
}

type cityResponse struct {
	Name     string `json:"name"`
	AQI      int    `json:"aqi"`
	Category string `json:"category"`
	Color    string `json:"color"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	readings, err := h.service.Readings(r.Context())
	if err != nil {
		h.logger.Error("list cities", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]cityResponse, 0, len(readings))
	for _, rd := range readings {
		out = append(out, cityResponse{Name: rd.Name, AQI: rd.AQI, Category: rd.Category.Label, Color: rd.Category.Color})
	}
	httpx.JSON(w, http.StatusOK, out)
}
