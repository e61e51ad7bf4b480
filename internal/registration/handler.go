package registration

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/airwatch-bd/airwatch/internal/cities"
	"github.com/airwatch-bd/airwatch/internal/shared"
	"github.com/airwatch-bd/airwatch/internal/view"
)

// CityLister supplies the options of the preferred city dropdown.
type CityLister interface {
	List(ctx context.Context) ([]cities.City, error)
}

// Handler wires HTTP endpoints for the registration flow.
type Handler struct {
	logger       *slog.Logger
	service      *Service
	templates    *view.Engine
	csrfManager  *shared.CSRFManager
	cities       CityLister
	secureCookie bool
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, cityList CityLister, secureCookie bool) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:       logger,
		service:      service,
		templates:    templates,
		csrfManager:  csrf,
		cities:       cityList,
		secureCookie: secureCookie,
	}
}

// MountRoutes registers registration routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/register", h.showForm)
	r.Post("/register", h.handleSubmit)
	r.Get("/register/confirm", h.showConfirm)
	r.Post("/register/confirm", h.handleConfirm)
	r.Post("/register/cancel", h.handleCancel)
}

type formPageData struct {
	Form   Form
	Error  string
	Cities []cities.City
}

type confirmPageData struct {
	Confirmation Confirmation
	Error        string
}

func (h *Handler) showForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, Form{FavoriteColor: DefaultFavoriteColor}, "")
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during registration submit")
		h.renderFailure(w, r)
		return
	}

	form := Form{
		FullName:        r.PostFormValue("full_name"),
		Email:           r.PostFormValue("email"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
		Location:        r.PostFormValue("location"),
		ZipCode:         r.PostFormValue("zip"),
		PreferredCity:   r.PostFormValue("city"),
		FavoriteColor:   r.PostFormValue("favcolor"),
	}

	confirmation, err := h.service.Submit(r.Context(), sess, form)
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			h.renderForm(w, r, http.StatusBadRequest, form.Redacted(), verr.UserMessage())
		case errors.Is(err, ErrDuplicateEmail):
			h.renderForm(w, r, http.StatusConflict, form.Redacted(), shared.UserSafeMessage(err))
		default:
			h.logger.Error("registration submit", slog.Any("error", err))
			h.renderFailure(w, r)
		}
		return
	}
	h.renderConfirm(w, r, http.StatusOK, confirmation, "")
}

func (h *Handler) showConfirm(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}
	confirmation, ok := h.service.Pending(r.Context(), sess)
	if !ok {
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}
	h.renderConfirm(w, r, http.StatusOK, confirmation, "")
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during registration confirm")
		h.renderFailure(w, r)
		return
	}

	committed, err := h.service.Confirm(r.Context(), sess)
	if err != nil {
		switch {
		case errors.Is(err, ErrExpiredStaging):
			h.renderForm(w, r, http.StatusGone, Form{FavoriteColor: DefaultFavoriteColor}, shared.UserSafeMessage(err))
		case errors.Is(err, ErrDuplicateEmail):
			confirmation, _ := h.service.Pending(r.Context(), sess)
			h.renderConfirm(w, r, http.StatusConflict, confirmation, shared.UserSafeMessage(err))
		default:
			h.logger.Error("registration confirm", slog.Any("error", err))
			h.renderFailure(w, r)
		}
		return
	}

	shared.SetFavoriteColor(w, committed.FavoriteColor, h.secureCookie)
	h.logger.Info("account registered", slog.Int64("user_id", committed.Account.ID))
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.service.Cancel(r.Context(), sess)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, form Form, message string) {
	data := formPageData{Form: form, Error: message}
	if h.cities != nil {
		list, err := h.cities.List(r.Context())
		if err != nil {
			h.logger.Warn("list cities for registration", slog.Any("error", err))
		}
		data.Cities = list
	}
	viewData := view.NewTemplateData(r, "Register", h.csrfToken(r), data)
	if err := h.templates.RenderStatus(w, status, "pages/register.html", viewData); err != nil {
		h.logger.Error("render register", slog.Any("error", err))
	}
}

func (h *Handler) renderConfirm(w http.ResponseWriter, r *http.Request, status int, confirmation Confirmation, message string) {
	viewData := view.NewTemplateData(r, "Confirm Registration", h.csrfToken(r), confirmPageData{Confirmation: confirmation, Error: message})
	if err := h.templates.RenderStatus(w, status, "pages/register_confirm.html", viewData); err != nil {
		h.logger.Error("render register confirm", slog.Any("error", err))
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
