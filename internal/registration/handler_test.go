package registration_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airwatch-bd/airwatch/internal/cities"
	"github.com/airwatch-bd/airwatch/internal/registration"
	"github.com/airwatch-bd/airwatch/internal/shared"
	"github.com/airwatch-bd/airwatch/internal/view"
)

type cityList []cities.City

func (c cityList) List(ctx context.Context) ([]cities.City, error) { return c, nil }

type browser struct {
	t         *testing.T
	sessions  *shared.SessionManager
	router    chi.Router
	sessionID string
}

func newBrowser(t *testing.T, accounts *memoryAccounts) *browser {
	t.Helper()
	sessions := newSessionManager(t)
	templates, err := view.NewEngine()
	require.NoError(t, err)

	svc := newService(accounts, nil, nil)
	handler := registration.NewHandler(nil, svc, templates, shared.NewCSRFManager("csrf"), cityList{{Name: "Dhaka", AQI: 150}, {Name: "Sylhet", AQI: 110}}, false)
	router := chi.NewRouter()
	handler.MountRoutes(router)
	return &browser{t: t, sessions: sessions, router: router}
}

func (b *browser) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if b.sessionID != "" {
		req.AddCookie(&http.Cookie{Name: b.sessions.CookieName(), Value: b.sessionID})
	}
	sess, err := b.sessions.Load(context.Background(), req)
	require.NoError(b.t, err)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	rec := httptest.NewRecorder()
	b.router.ServeHTTP(rec, req)
	require.NoError(b.t, b.sessions.Commit(context.Background(), rec, req, sess))
	b.sessionID = sess.ID
	return rec
}

func formValues(f registration.Form) url.Values {
	return url.Values{
		"full_name":        {f.FullName},
		"email":            {f.Email},
		"password":         {f.Password},
		"confirm_password": {f.ConfirmPassword},
		"location":         {f.Location},
		"zip":              {f.ZipCode},
		"city":             {f.PreferredCity},
		"favcolor":         {f.FavoriteColor},
	}
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestRegisterFormRendersCities(t *testing.T) {
	b := newBrowser(t, newMemoryAccounts())

	rec := b.do(http.MethodGet, "/register", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<form method="post" action="/register"`)
	assert.Contains(t, body, `<option value="Sylhet"`)
}

func TestRegisterSubmitConfirmFlow(t *testing.T) {
	accounts := newMemoryAccounts()
	b := newBrowser(t, accounts)

	rec := b.do(http.MethodPost, "/register", formValues(validForm()))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Confirm your details")
	assert.Contains(t, rec.Body.String(), "21-45678-2@student.aiub.edu")
	assert.NotContains(t, rec.Body.String(), "12345678")

	rec = b.do(http.MethodGet, "/register/confirm", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = b.do(http.MethodPost, "/register/confirm", url.Values{})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	color := findCookie(rec, shared.FavoriteColorCookie)
	require.NotNil(t, color)
	assert.Equal(t, "#0288d1", color.Value)
	assert.Equal(t, 1, accounts.count())

	rec = b.do(http.MethodGet, "/register/confirm", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestRegisterInvalidSubmitRerendersForm(t *testing.T) {
	b := newBrowser(t, newMemoryAccounts())

	form := validForm()
	form.ConfirmPassword = "11112222"
	rec := b.do(http.MethodPost, "/register", formValues(form))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Passwords do not match.")
	assert.Contains(t, body, `value="Rahim Uddin"`)
	assert.NotContains(t, body, "12345678")
	assert.NotContains(t, body, "11112222")
}

func TestRegisterConfirmDuplicateKeepsStaging(t *testing.T) {
	accounts := newMemoryAccounts()
	first := newBrowser(t, accounts)
	second := newBrowser(t, accounts)

	require.Equal(t, http.StatusOK, first.do(http.MethodPost, "/register", formValues(validForm())).Code)
	require.Equal(t, http.StatusOK, second.do(http.MethodPost, "/register", formValues(validForm())).Code)
	require.Equal(t, http.StatusSeeOther, first.do(http.MethodPost, "/register/confirm", url.Values{}).Code)

	rec := second.do(http.MethodPost, "/register/confirm", url.Values{})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "This email is already registered.")
	assert.Nil(t, findCookie(rec, shared.FavoriteColorCookie))

	rec = second.do(http.MethodGet, "/register/confirm", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "staged data survives a duplicate confirm")
	assert.Equal(t, 1, accounts.count())
}

func TestRegisterCancelThenConfirmExpired(t *testing.T) {
	accounts := newMemoryAccounts()
	b := newBrowser(t, accounts)

	require.Equal(t, http.StatusOK, b.do(http.MethodPost, "/register", formValues(validForm())).Code)

	rec := b.do(http.MethodPost, "/register/cancel", url.Values{})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = b.do(http.MethodPost, "/register/confirm", url.Values{})
	assert.Equal(t, http.StatusGone, rec.Code)
	assert.Contains(t, rec.Body.String(), "Form data expired. Please submit the form again.")
	assert.Zero(t, accounts.count())
}

func TestRegisterConfirmStoreFailureShowsGenericError(t *testing.T) {
	accounts := newMemoryAccounts()
	b := newBrowser(t, accounts)
	require.Equal(t, http.StatusOK, b.do(http.MethodPost, "/register", formValues(validForm())).Code)

	accounts.failWith = shared.ErrStoreUnavailable
	rec := b.do(http.MethodPost, "/register/confirm", url.Values{})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), shared.GenericFailureMessage)
	assert.NotContains(t, rec.Body.String(), "store unavailable")
}
