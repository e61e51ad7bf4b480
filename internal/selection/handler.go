package selection

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/airwatch-bd/airwatch/internal/aqi"
	"github.com/airwatch-bd/airwatch/internal/cities"
	"github.com/airwatch-bd/airwatch/internal/shared"
	"github.com/airwatch-bd/airwatch/internal/view"
)

// Lister supplies the full catalog for the selection grid.
type Lister interface {
	List(ctx context.Context) ([]cities.City, error)
}

// Handler wires HTTP endpoints for city selection. Routes expect an authenticated
// session; mount them behind auth.RequireUser.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	catalog     Lister
	templates   *view.Engine
	csrfManager *shared.CSRFManager
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, catalog Lister, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, catalog: catalog, templates: templates, csrfManager: csrf}
}

// MountRoutes registers selection routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/cities", h.showSelect)
	r.Post("/cities", h.handleSelect)
	r.Get("/cities/show", h.showResults)
}

type selectPageData struct {
	Options  []cities.City
	Selected map[string]bool
	Max      int
	Error    string
}

type resultsPageData struct {
	Readings []cities.Reading
	Scale    []aqi.Band
}

func (h *Handler) showSelect(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.renderSelect(w, r, http.StatusOK, h.service.Selected(r.Context(), sess), "")
}

func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	names := r.PostForm["cities"]
	err := h.service.Select(r.Context(), sess, sess.User(), names)
	switch {
	case err == nil:
		http.Redirect(w, r, "/cities/show", http.StatusSeeOther)
	case errors.Is(err, shared.ErrNotAuthenticated):
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	case errors.Is(err, ErrSelectionSize), errors.Is(err, ErrUnknownCity):
		h.renderSelect(w, r, http.StatusBadRequest, names, shared.UserSafeMessage(err))
	default:
		h.logger.Error("select cities", slog.Any("error", err))
		h.renderFailure(w, r)
	}
}

func (h *Handler) showResults(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	readings, err := h.service.Results(r.Context(), sess)
	if err != nil {
		h.logger.Error("selection results", slog.Any("error", err))
		h.renderFailure(w, r)
		return
	}
	if len(readings) == 0 {
		http.Redirect(w, r, "/cities", http.StatusSeeOther)
		return
	}
	data := view.NewTemplateData(r, "Air Quality", h.csrfToken(r), resultsPageData{Readings: readings, Scale: aqi.Scale()})
	if err := h.templates.Render(w, "pages/cities_show.html", data); err != nil {
		h.logger.Error("render results", slog.Any("error", err))
	}
}

func (h *Handler) renderSelect(w http.ResponseWriter, r *http.Request, status int, selected []string, message string) {
	options, err := h.catalog.List(r.Context())
	if err != nil {
		h.logger.Error("list cities", slog.Any("error", err))
		h.renderFailure(w, r)
		return
	}
	marked := make(map[string]bool, len(selected))
	for _, name := range selected {
		marked[name] = true
	}
	data := selectPageData{Options: options, Selected: marked, Max: MaxCities, Error: message}
	if err := h.templates.RenderStatus(w, status, "pages/cities_select.html", view.NewTemplateData(r, "Choose Cities", h.csrfToken(r), data)); err != nil {
		h.logger.Error("render select", slog.Any("error", err))
	}
}

func (h *Handler) renderFailure(w http.ResponseWriter, r *http.Request) {
	if err := h.templates.RenderError(w, r, http.StatusServiceUnavailable, shared.GenericFailureMessage); err != nil {
		h.logger.Error("render error page", slog.Any("error", err))
	}
}

func (h *Handler) csrfToken(r *http.Request) string {
	token, err := h.csrfManager.EnsureToken(r.Context(), shared.SessionFromContext(r.Context()))
	if err != nil {
		h.logger.Warn("ensure csrf token", slog.Any("error", err))
	}
	return token
}
