package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airwatch-bd/airwatch/internal/auth"
	"github.com/airwatch-bd/airwatch/internal/shared"
)

func TestAuthenticate(t *testing.T) {
	user := newUser(t)
	svc := auth.NewService(&stubRepo{user: user}, auth.Options{})
	ctx := context.Background()

	got, err := svc.Authenticate(ctx, user.Email, "12345678")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, user.Email, "00000000")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@student.aiub.edu", "12345678")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestPurgeExpiredSessions(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))
	repo := &stubRepo{}
	svc := auth.NewService(repo, auth.Options{SessionTTL: time.Hour, Clock: clock})
	ctx := context.Background()

	require.NoError(t, svc.RegisterSession(ctx, "early", 1, "127.0.0.1", "test"))
	clock.Advance(30 * time.Minute)
	require.NoError(t, svc.RegisterSession(ctx, "late", 1, "127.0.0.1", "test"))

	clock.Advance(45 * time.Minute)
	purged, err := svc.PurgeExpiredSessions(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)
	assert.Contains(t, repo.sessions, "late")
	assert.NotContains(t, repo.sessions, "early")
}
