// Package registration implements the two-step sign-up flow: a validated form is
// staged in the browser session, then either confirmed into an account or cancelled.
package registration

import (
	"context"
	"time"

	"github.com/airwatch-bd/airwatch/internal/shared"
	"github.com/airwatch-bd/airwatch/internal/users"
)

// PendingKey is the session key holding the staged registration.
const PendingKey = "pending_registration"

// DefaultFavoriteColor is used when the form carries no usable colour.
const DefaultFavoriteColor = "#303f9f"

// Form is the registration form as submitted by the browser.
type Form struct {
	FullName        string `form:"full_name" validate:"required"`
	Email           string `form:"email" validate:"required"`
	Password        string `form:"password" validate:"required"`
	ConfirmPassword string `form:"confirm_password" validate:"required"`
	Location        string `form:"location" validate:"required"`
	ZipCode         string `form:"zip" validate:"required"`
	PreferredCity   string `form:"city" validate:"required"`
	FavoriteColor   string `form:"favcolor"`
}

// Redacted returns the form without password values, for re-rendering.
func (f Form) Redacted() Form {
	f.Password = ""
	f.ConfirmPassword = ""
	return f
}

// PendingRegistration is the validated form waiting for confirmation. At most one
// exists per session.
type PendingRegistration struct {
	FullName        string    `json:"full_name"`
	Email           string    `json:"email"`
	Password        string    `json:"password_raw"`
	ConfirmPassword string    `json:"confirm_password_raw"`
	Location        string    `json:"location"`
	ZipCode         string    `json:"zip_code"`
	PreferredCity   string    `json:"preferred_city"`
	FavoriteColor   string    `json:"favorite_color"`
	StagedAt        time.Time `json:"staged_at"`
}

// Confirmation echoes the staged fields back to the user. Passwords are never included.
type Confirmation struct {
	FullName      string
	Email         string
	Location      string
	ZipCode       string
	PreferredCity string
	FavoriteColor string
}

func (p PendingRegistration) confirmation() Confirmation {
	return Confirmation{
		FullName:      p.FullName,
		Email:         p.Email,
		Location:      p.Location,
		ZipCode:       p.ZipCode,
		PreferredCity: p.PreferredCity,
		FavoriteColor: p.FavoriteColor,
	}
}

// Committed is the result of a successful confirmation.
type Committed struct {
	Account       users.Account
	FavoriteColor string
}

// State is the per-session storage the workflow stages data in. *shared.Session
// satisfies it.
type State interface {
	GetJSON(key string, dst any) (bool, error)
	SetJSON(key string, value any) error
	Delete(key string)
	AddFlash(msg shared.FlashMessage)
}

// AccountStore is the credential store port.
type AccountStore interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, in users.NewAccount) (users.Account, error)
}

// CityDirectory answers catalog membership questions.
type CityDirectory interface {
	Exists(ctx context.Context, name string) (bool, error)
}

// Notifier is told about newly committed accounts.
type Notifier interface {
	Registered(ctx context.Context, account users.Account) error
}
