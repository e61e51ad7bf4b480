package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/airwatch-bd/airwatch/internal/observability"
	"github.com/airwatch-bd/airwatch/internal/shared"
	"github.com/airwatch-bd/airwatch/internal/view"
)

const (
	msgMissingFields = "Please enter both email and password."
	msgInvalidLogin  = "Invalid email or password."
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	templates      *view.Engine
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
	metrics        *observability.Metrics
	secureCookie   bool
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, sessions *shared.SessionManager, csrf *shared.CSRFManager, metrics *observability.Metrics, secureCookie bool) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		templates:      templates,
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      validator.New(),
		metrics:        metrics,
		secureCookie:   secureCookie,
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginForm struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

type loginPageData struct {
	Email    string
	Remember bool
	Error    string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := shared.CurrentUserID(r.Context()); ok {
		http.Redirect(w, r, "/cities", http.StatusSeeOther)
		return
	}
	remembered := shared.RememberedEmail(r)
	h.renderLogin(w, r, http.StatusOK, loginPageData{Email: remembered, Remember: remembered != ""})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		h.renderFailure(w, r)
		return
	}

	form := loginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	remember := r.PostFormValue("remember") != ""
	data := loginPageData{Email: form.Email, Remember: remember}

	if err := h.validator.Struct(form); err != nil {
		h.metrics.RecordWorkflow("login", "invalid")
		data.Error = msgMissingFields
		h.renderLogin(w, r, http.StatusBadRequest, data)
		return
	}

	user, err := h.service.Authenticate(r.Context(), form.Email, form.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			h.metrics.RecordWorkflow("login", "rejected")
			data.Error = msgInvalidLogin
			h.renderLogin(w, r, http.StatusBadRequest, data)
			return
		}
		h.metrics.RecordWorkflow("login", "store_unavailable")
		h.logger.Error("authenticate", slog.Any("error", err))
		h.renderFailure(w, r)
		return
	}

	h.sessionManager.Regenerate(sess)
	h.csrfManager.Rotate(sess)
	sess.SetUser(strconv.FormatInt(user.ID, 10))
	sess.Set(shared.UserNameKey, user.FullName)
	sess.Set(shared.UserEmailKey, user.Email)
	if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}

	if remember {
		shared.SetRememberedEmail(w, user.Email, h.secureCookie)
	} else {
		shared.ClearRememberedEmail(w, h.secureCookie)
	}
	h.metrics.RecordWorkflow("login", "ok")
	http.Redirect(w, r, "/cities", http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		h.sessionManager.Destroy(sess)
	}
	shared.ClearRememberedEmail(w, h.secureCookie)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, data loginPageData) {
	csrfToken, err := h.csrfManager.EnsureToken(r.Context(), shared.SessionFromContext(r.Context()))
	if err != nil {
		h.logger.Warn("ensure csrf token", slog.Any("error", err))
	}
	viewData := view.NewTemplateData(r, "Log in", csrfToken, data)
	if err := h.templates.RenderStatus(w, status, "pages/login.html", viewData); err != nil {
		h.logger.Error("render login", slog.Any("error", err))
	}
}

func (h *Handler) renderFailure(w http.ResponseWriter, r *http.Request) {
	if err := h.templates.RenderError(w, r, http.StatusServiceUnavailable, shared.GenericFailureMessage); err != nil {
		h.logger.Error("render error page", slog.Any("error", err))
	}
}

// ShowLoginForTest exposes the GET handler for tests.
func (h *Handler) ShowLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.showLogin(w, r)
}

// HandleLoginForTest exposes the POST handler for tests.
func (h *Handler) HandleLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r)
}

// HandleLogoutForTest exposes the logout handler for tests.
func (h *Handler) HandleLogoutForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogout(w, r)
}
