package selection_test

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airwatch-bd/airwatch/internal/aqi"
	"github.com/airwatch-bd/airwatch/internal/cities"
	"github.com/airwatch-bd/airwatch/internal/selection"
	"github.com/airwatch-bd/airwatch/internal/shared"
	_ "github.com/airwatch-bd/airwatch/testing"
)

type memoryCatalog struct {
	cities []cities.City
	err    error
}

func (m memoryCatalog) List(ctx context.Context) ([]cities.City, error) {
	return m.cities, m.err
}

func (m memoryCatalog) FindByNames(ctx context.Context, names []string) ([]cities.City, error) {
	if m.err != nil {
		return nil, m.err
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []cities.City
	for _, c := range m.cities {
		if want[c.Name] {
			out = append(out, c)
		}
	}
	return out, nil
}

func bangladesh() memoryCatalog {
	return memoryCatalog{cities: []cities.City{
		{Name: "Barishal", AQI: 160}, {Name: "Chittagong", AQI: 95}, {Name: "Comilla", AQI: 105},
		{Name: "Cox's Bazar", AQI: 200}, {Name: "Dhaka", AQI: 150}, {Name: "Gazipur", AQI: 190},
		{Name: "Khulna", AQI: 140}, {Name: "Mymenshing", AQI: 180}, {Name: "Rajshahi", AQI: 130},
		{Name: "Rangpur", AQI: 170}, {Name: "Sylhet", AQI: 110}, {Name: "Tangail", AQI: 120},
	}}
}

func allNames(c memoryCatalog) []string {
	names := make([]string, 0, len(c.cities))
	for _, city := range c.cities {
		names = append(names, city.Name)
	}
	return names
}

func newSession(t *testing.T) *shared.Session {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sm := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
	sess, err := sm.Load(context.Background(), httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	return sess
}

func TestSelectSizeBounds(t *testing.T) {
	ctx := context.Background()
	catalog := bangladesh()
	svc := selection.NewService(catalog, nil)
	sess := newSession(t)

	assert.ErrorIs(t, svc.Select(ctx, sess, "1", nil), selection.ErrSelectionSize)
	assert.ErrorIs(t, svc.Select(ctx, sess, "1", allNames(catalog)[:11]), selection.ErrSelectionSize)
	assert.Empty(t, svc.Selected(ctx, sess))

	require.NoError(t, svc.Select(ctx, sess, "1", []string{"Dhaka"}))
	assert.Equal(t, []string{"Dhaka"}, svc.Selected(ctx, sess))

	require.NoError(t, svc.Select(ctx, sess, "1", allNames(catalog)[:10]))
	assert.Len(t, svc.Selected(ctx, sess), 10)
}

func TestSelectRejectionKeepsPriorSelection(t *testing.T) {
	ctx := context.Background()
	catalog := bangladesh()
	svc := selection.NewService(catalog, nil)
	sess := newSession(t)

	require.NoError(t, svc.Select(ctx, sess, "1", []string{"Sylhet", "Dhaka"}))

	err := svc.Select(ctx, sess, "1", []string{})
	assert.ErrorIs(t, err, selection.ErrSelectionSize)
	assert.Equal(t, "Please select at least 1 and at most 10 cities to proceed.", shared.UserSafeMessage(err))

	assert.ErrorIs(t, svc.Select(ctx, sess, "1", allNames(catalog)), selection.ErrSelectionSize)
	assert.ErrorIs(t, svc.Select(ctx, sess, "1", []string{"Dhaka", "Gotham"}), selection.ErrUnknownCity)
	assert.Equal(t, []string{"Dhaka", "Sylhet"}, svc.Selected(ctx, sess))
}

func TestSelectReplacesWholesaleAndCollapsesDuplicates(t *testing.T) {
	ctx := context.Background()
	svc := selection.NewService(bangladesh(), nil)
	sess := newSession(t)

	require.NoError(t, svc.Select(ctx, sess, "1", []string{"Dhaka", "Khulna"}))
	require.NoError(t, svc.Select(ctx, sess, "1", []string{"Rangpur", "Rangpur", " Rangpur "}))
	assert.Equal(t, []string{"Rangpur"}, svc.Selected(ctx, sess))
}

func TestSelectRequiresUser(t *testing.T) {
	svc := selection.NewService(bangladesh(), nil)
	err := svc.Select(context.Background(), newSession(t), "", []string{"Dhaka"})
	assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
}

func TestSelectStoreFailure(t *testing.T) {
	svc := selection.NewService(memoryCatalog{err: fmt.Errorf("%w: boom", shared.ErrStoreUnavailable)}, nil)
	err := svc.Select(context.Background(), newSession(t), "1", []string{"Dhaka"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrStoreUnavailable))
}

func TestResultsClassifiesSelection(t *testing.T) {
	ctx := context.Background()
	svc := selection.NewService(bangladesh(), nil)
	sess := newSession(t)

	readings, err := svc.Results(ctx, sess)
	require.NoError(t, err)
	assert.Empty(t, readings)

	require.NoError(t, svc.Select(ctx, sess, "1", []string{"Cox's Bazar", "Chittagong", "Dhaka"}))
	readings, err = svc.Results(ctx, sess)
	require.NoError(t, err)
	require.Len(t, readings, 3)
	assert.Equal(t, "Chittagong", readings[0].Name)
	assert.Equal(t, aqi.LevelModerate, readings[0].Category.Level)
	assert.Equal(t, aqi.LevelUnhealthy, readings[1].Category.Level)
	assert.Equal(t, aqi.LevelUnhealthyForSensitiveGroups, readings[2].Category.Level)
}
