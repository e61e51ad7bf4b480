package registration_test

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/airwatch-bd/airwatch/internal/shared"
	"github.com/airwatch-bd/airwatch/internal/users"
)

type memoryAccounts struct {
	mu        sync.Mutex
	byEmail   map[string]users.Account
	nextID    int64
	failWith  error
	existsErr error
}

func newMemoryAccounts() *memoryAccounts {
	return &memoryAccounts{byEmail: make(map[string]users.Account)}
}

func (m *memoryAccounts) EmailExists(ctx context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.byEmail[email]
	return ok, nil
}

func (m *memoryAccounts) Create(ctx context.Context, in users.NewAccount) (users.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return users.Account{}, m.failWith
	}
	if _, ok := m.byEmail[in.Email]; ok {
		return users.Account{}, users.ErrDuplicateEmail
	}
	m.nextID++
	account := users.Account{
		ID:            m.nextID,
		FullName:      in.FullName,
		Email:         in.Email,
		PasswordHash:  in.PasswordHash,
		Location:      in.Location,
		ZipCode:       in.ZipCode,
		PreferredCity: in.PreferredCity,
		CreatedAt:     time.Now(),
	}
	m.byEmail[in.Email] = account
	return account, nil
}

func (m *memoryAccounts) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byEmail)
}

type staticCities map[string]bool

func (s staticCities) Exists(ctx context.Context, name string) (bool, error) {
	return s[name], nil
}

var catalog = staticCities{"Dhaka": true, "Sylhet": true, "Khulna": true}

type recordingNotifier struct {
	mu       sync.Mutex
	accounts []users.Account
}

func (n *recordingNotifier) Registered(ctx context.Context, account users.Account) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.accounts = append(n.accounts, account)
	return nil
}

func newSessionManager(t *testing.T) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
}

func newSession(t *testing.T, mgr *shared.SessionManager) *shared.Session {
	t.Helper()
	sess, err := mgr.Load(context.Background(), httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	return sess
}
