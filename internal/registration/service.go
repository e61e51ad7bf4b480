package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"

	"github.com/airwatch-bd/airwatch/internal/observability"
	"github.com/airwatch-bd/airwatch/internal/shared"
	"github.com/airwatch-bd/airwatch/internal/users"
)

// Options tunes the workflow. Zero values pick defaults.
type Options struct {
	// StagingTTL bounds how long a staged registration may wait for confirmation.
	StagingTTL time.Duration
	BcryptCost int
	Clock      clockwork.Clock
	Logger     *slog.Logger
	Metrics    *observability.Metrics
	Notifier   Notifier
}

// Service orchestrates submit, confirm and cancel.
type Service struct {
	accounts   AccountStore
	cities     CityDirectory
	validator  *validator.Validate
	clock      clockwork.Clock
	stagingTTL time.Duration
	cost       int
	logger     *slog.Logger
	metrics    *observability.Metrics
	notifier   Notifier
}

// NewService constructs the workflow. cities may be nil to skip the catalog check.
func NewService(accounts AccountStore, cities CityDirectory, opts Options) *Service {
	s := &Service{
		accounts:   accounts,
		cities:     cities,
		validator:  NewValidator(),
		clock:      opts.Clock,
		stagingTTL: opts.StagingTTL,
		cost:       opts.BcryptCost,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		notifier:   opts.Notifier,
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.stagingTTL <= 0 {
		s.stagingTTL = 30 * time.Minute
	}
	if s.cost == 0 {
		s.cost = bcrypt.DefaultCost
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Submit validates the form and stages it in st, replacing any earlier staged
// registration. On failure st is left untouched.
func (s *Service) Submit(ctx context.Context, st State, form Form) (Confirmation, error) {
	form = normalize(form)
	if err := s.validate(ctx, form); err != nil {
		s.metrics.RecordWorkflow("registration.submit", outcome(err))
		return Confirmation{}, err
	}

	exists, err := s.accounts.EmailExists(ctx, form.Email)
	if err != nil {
		s.metrics.RecordWorkflow("registration.submit", outcome(err))
		return Confirmation{}, fmt.Errorf("registration: submit: %w", err)
	}
	if exists {
		s.metrics.RecordWorkflow("registration.submit", outcome(ErrDuplicateEmail))
		return Confirmation{}, ErrDuplicateEmail
	}

	pending := PendingRegistration{
		FullName:        form.FullName,
		Email:           form.Email,
		Password:        form.Password,
		ConfirmPassword: form.ConfirmPassword,
		Location:        form.Location,
		ZipCode:         form.ZipCode,
		PreferredCity:   form.PreferredCity,
		FavoriteColor:   s.favoriteColor(form.FavoriteColor),
		StagedAt:        s.clock.Now().UTC(),
	}
	if err := st.SetJSON(PendingKey, pending); err != nil {
		return Confirmation{}, fmt.Errorf("registration: stage: %w", err)
	}
	s.metrics.RecordWorkflow("registration.submit", "staged")
	return pending.confirmation(), nil
}

// Pending returns the staged registration of st, if one is present and fresh.
func (s *Service) Pending(ctx context.Context, st State) (Confirmation, bool) {
	pending, ok := s.load(st)
	if !ok {
		return Confirmation{}, false
	}
	return pending.confirmation(), true
}

// Confirm commits the staged registration. The duplicate check happens again inside
// the credential store insert, so a duplicate that appeared after Submit is still
// caught. On any error the staged registration stays in st for retry or cancel.
func (s *Service) Confirm(ctx context.Context, st State) (Committed, error) {
	pending, ok := s.load(st)
	if !ok {
		s.metrics.RecordWorkflow("registration.confirm", outcome(ErrExpiredStaging))
		return Committed{}, ErrExpiredStaging
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pending.Password), s.cost)
	if err != nil {
		return Committed{}, fmt.Errorf("registration: hash password: %w", err)
	}

	account, err := s.accounts.Create(ctx, users.NewAccount{
		FullName:      pending.FullName,
		Email:         pending.Email,
		PasswordHash:  string(hash),
		Location:      pending.Location,
		ZipCode:       pending.ZipCode,
		PreferredCity: pending.PreferredCity,
	})
	if err != nil {
		if errors.Is(err, users.ErrDuplicateEmail) {
			err = ErrDuplicateEmail
		} else {
			err = fmt.Errorf("registration: confirm: %w", err)
		}
		s.metrics.RecordWorkflow("registration.confirm", outcome(err))
		return Committed{}, err
	}

	st.Delete(PendingKey)
	st.AddFlash(shared.FlashMessage{Kind: "success", Message: "Registration successful! You can now log in."})
	s.metrics.RecordWorkflow("registration.confirm", "committed")

	if s.notifier != nil {
		if err := s.notifier.Registered(ctx, account); err != nil {
			s.logger.Warn("registration notify", slog.Int64("user_id", account.ID), slog.Any("error", err))
		}
	}
	return Committed{Account: account, FavoriteColor: pending.FavoriteColor}, nil
}

// Cancel drops any staged registration. It is idempotent.
func (s *Service) Cancel(ctx context.Context, st State) {
	st.Delete(PendingKey)
	s.metrics.RecordWorkflow("registration.cancel", "cleared")
}

// load reads the staged registration, discarding undecodable or expired entries.
func (s *Service) load(st State) (PendingRegistration, bool) {
	var pending PendingRegistration
	ok, err := st.GetJSON(PendingKey, &pending)
	if err != nil {
		s.logger.Warn("discarding unreadable staged registration", slog.Any("error", err))
		st.Delete(PendingKey)
		return PendingRegistration{}, false
	}
	if !ok {
		return PendingRegistration{}, false
	}
	if s.clock.Since(pending.StagedAt) > s.stagingTTL {
		st.Delete(PendingKey)
		return PendingRegistration{}, false
	}
	return pending, true
}

func outcome(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &verr):
		return "invalid"
	case errors.Is(err, ErrDuplicateEmail):
		return "duplicate"
	case errors.Is(err, ErrExpiredStaging):
		return "expired"
	case errors.Is(err, shared.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "error"
	}
}
