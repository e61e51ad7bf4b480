package shared

import (
	"net/http"
	"regexp"
	"time"
)

const (
	// RememberedEmailCookie pre-fills the login form.
	RememberedEmailCookie = "remembered_email"
	// FavoriteColorCookie carries the theme colour chosen at registration.
	FavoriteColorCookie = "fav_color"

	preferenceMaxAge = 30 * 24 * time.Hour
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// SetRememberedEmail stores email in a long lived cookie.
func SetRememberedEmail(w http.ResponseWriter, email string, secure bool) {
	setPreference(w, RememberedEmailCookie, email, secure)
}

// ClearRememberedEmail expires the remembered email cookie.
func ClearRememberedEmail(w http.ResponseWriter, secure bool) {
	expirePreference(w, RememberedEmailCookie, secure)
}

// RememberedEmail returns the remembered email, if any.
func RememberedEmail(r *http.Request) string {
	c, err := r.Cookie(RememberedEmailCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// SetFavoriteColor stores the theme colour cookie.
func SetFavoriteColor(w http.ResponseWriter, color string, secure bool) {
	setPreference(w, FavoriteColorCookie, color, secure)
}

// FavoriteColor returns the theme colour from the request cookie, or fallback when
// the cookie is missing or malformed.
func FavoriteColor(r *http.Request, fallback string) string {
	c, err := r.Cookie(FavoriteColorCookie)
	if err != nil || !hexColor.MatchString(c.Value) {
		return fallback
	}
	return c.Value
}

func setPreference(w http.ResponseWriter, name, value string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(preferenceMaxAge.Seconds()),
		Expires:  time.Now().Add(preferenceMaxAge),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func expirePreference(w http.ResponseWriter, name string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
