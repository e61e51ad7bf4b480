package app

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/airwatch-bd/airwatch/internal/aqi"
	"github.com/airwatch-bd/airwatch/internal/auth"
	"github.com/airwatch-bd/airwatch/internal/cities"
	"github.com/airwatch-bd/airwatch/internal/observability"
	"github.com/airwatch-bd/airwatch/internal/registration"
	"github.com/airwatch-bd/airwatch/internal/selection"
	"github.com/airwatch-bd/airwatch/internal/shared"
	"github.com/airwatch-bd/airwatch/internal/view"
	"github.com/airwatch-bd/airwatch/jobs"
	"github.com/airwatch-bd/airwatch/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	Templates           *view.Engine
	SessionManager      *shared.SessionManager
	CSRFManager         *shared.CSRFManager
	AuthHandler         *auth.Handler
	RegistrationHandler *registration.Handler
	SelectionHandler    *selection.Handler
	CitiesHandler       *cities.Handler
	Readings            ReadingsSource
	JobHandler          *jobs.Handler
	Metrics             *observability.Metrics
}

// ReadingsSource lists the classified catalog for the landing page.
type ReadingsSource interface {
	Readings(ctx context.Context) ([]cities.Reading, error)
}

type landingData struct {
	Readings []cities.Reading
	Scale    []aqi.Band
	Error    string
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		Templates:      params.Templates,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		csrfToken, err := params.CSRFManager.EnsureToken(r.Context(), shared.SessionFromContext(r.Context()))
		if err != nil {
			params.Logger.Warn("ensure csrf token", slog.Any("error", err))
		}
		landing := landingData{Scale: aqi.Scale()}
		if params.Readings != nil {
			readings, err := params.Readings.Readings(r.Context())
			if err != nil {
				params.Logger.Error("load landing readings", slog.Any("error", err))
				landing.Error = shared.UserSafeMessage(err)
			}
			landing.Readings = readings
		}
		data := view.NewTemplateData(r, "Air Quality Index", csrfToken, landing)
		if err := params.Templates.Render(w, "pages/landing.html", data); err != nil {
			params.Logger.Error("render landing", slog.Any("error", err))
		}
	})

	params.AuthHandler.MountRoutes(r)
	params.RegistrationHandler.MountRoutes(r)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)
		params.SelectionHandler.MountRoutes(r)
	})
	if params.CitiesHandler != nil {
		params.CitiesHandler.MountRoutes(r)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler lets browsers cache embedded assets for an hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
