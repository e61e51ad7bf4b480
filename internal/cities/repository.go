package cities

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/airwatch-bd/airwatch/internal/shared"
)

// Querier is the subset of *pgxpool.Pool used by the repository.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository reads the cities table.
type Repository struct {
	db Querier
}

// NewRepository constructs a repository.
func NewRepository(db Querier) *Repository {
	return &Repository{db: db}
}

// List returns every city ordered by name.
func (r *Repository) List(ctx context.Context) ([]City, error) {
	rows, err := r.db.Query(ctx, `SELECT name, aqi FROM cities ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: cities: list: %w", shared.ErrStoreUnavailable, err)
	}
	return collect(rows)
}

// FindByNames returns the cities whose names are in names, ordered by name.
// Unknown names are ignored.
func (r *Repository) FindByNames(ctx context.Context, names []string) ([]City, error) {
	if len(names) == 0 {
		return []City{}, nil
	}
	rows, err := r.db.Query(ctx, `SELECT name, aqi FROM cities WHERE name = ANY($1) ORDER BY name ASC`, names)
	if err != nil {
		return nil, fmt.Errorf("%w: cities: find by names: %w", shared.ErrStoreUnavailable, err)
	}
	return collect(rows)
}

func collect(rows pgx.Rows) ([]City, error) {
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (City, error) {
		var c City
		err := row.Scan(&c.Name, &c.AQI)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: cities: scan: %w", shared.ErrStoreUnavailable, err)
	}
	return list, nil
}
