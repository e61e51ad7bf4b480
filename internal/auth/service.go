package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"

	"github.com/airwatch-bd/airwatch/internal/shared"
)

// dummyHash is compared against when the e-mail is unknown so both paths cost one bcrypt run.
var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z1lO0v9D6GzY2mwTnKJ2Y8aK")

// Options tunes the Service.
type Options struct {
	// SessionTTL is the lifetime recorded on login session rows.
	SessionTTL time.Duration
	Clock      clockwork.Clock
}

// Service wraps authentication business rules.
type Service struct {
	repo       Repository
	clock      clockwork.Clock
	sessionTTL time.Duration
}

// NewService constructs a new Service.
func NewService(repo Repository, opts Options) *Service {
	s := &Service{repo: repo, clock: opts.Clock, sessionTTL: opts.SessionTTL}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.sessionTTL <= 0 {
		s.sessionTTL = 24 * time.Hour
	}
	return s
}

// Authenticate validates email/password credentials. Unknown e-mail and wrong password
// both yield shared.ErrInvalidCredentials; store failures are returned as is.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// RegisterSession records the login session for auditing.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, ip, ua string) error {
	now := s.clock.Now()
	return s.repo.CreateSession(ctx, LoginSession{
		ID:        id,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
		IP:        ip,
		UserAgent: ua,
	})
}

// RemoveSession deletes a login session record.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

// PurgeExpiredSessions removes login session rows past their expiry.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.repo.PurgeExpiredSessions(ctx, s.clock.Now())
}
