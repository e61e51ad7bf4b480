package cities_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airwatch-bd/airwatch/internal/cities"
	"github.com/airwatch-bd/airwatch/internal/platform/db/dbtest"
	_ "github.com/airwatch-bd/airwatch/testing"
)

func TestRepositoryReadsSeededCatalog(t *testing.T) {
	pool := dbtest.NewPool(t)
	repo := cities.NewRepository(pool)
	ctx := context.Background()

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 12)
	assert.Equal(t, "Barishal", all[0].Name)

	picked, err := repo.FindByNames(ctx, []string{"Sylhet", "Dhaka", "Nowhere"})
	require.NoError(t, err)
	assert.Equal(t, []cities.City{{Name: "Dhaka", AQI: 150}, {Name: "Sylhet", AQI: 110}}, picked)

	none, err := repo.FindByNames(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}
