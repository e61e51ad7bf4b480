package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/airwatch-bd/airwatch/internal/platform/db"
	"github.com/airwatch-bd/airwatch/internal/shared"
)

const emailConstraint = "users_email_key"

// DB is the subset of *pgxpool.Pool used by the repository.
type DB interface {
	db.Beginner
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	db    DB
	audit *shared.AuditLogger
}

// NewRepository constructs a repository.
func NewRepository(pool DB, audit *shared.AuditLogger) *Repository {
	return &Repository{db: pool, audit: audit}
}

// EmailExists reports whether an account uses email.
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: users: email exists: %w", shared.ErrStoreUnavailable, err)
	}
	return exists, nil
}

// FindByEmail loads the account registered with email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	var a Account
	err := r.db.QueryRow(ctx, `SELECT id, full_name, email, password_hash, location, zip_code, preferred_city, created_at
		FROM users WHERE email = $1`, email).
		Scan(&a.ID, &a.FullName, &a.Email, &a.PasswordHash, &a.Location, &a.ZipCode, &a.PreferredCity, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("%w: users: find by email: %w", shared.ErrStoreUnavailable, err)
	}
	return &a, nil
}

// Create inserts the account and its audit record in one transaction. The email
// check and the insert are a single statement guarded by the unique constraint, so
// concurrent creators of the same email see exactly one success and ErrDuplicateEmail.
func (r *Repository) Create(ctx context.Context, in NewAccount) (Account, error) {
	account := Account{
		FullName:      in.FullName,
		Email:         in.Email,
		PasswordHash:  in.PasswordHash,
		Location:      in.Location,
		ZipCode:       in.ZipCode,
		PreferredCity: in.PreferredCity,
	}
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO users (full_name, email, password_hash, location, zip_code, preferred_city)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (email) DO NOTHING
			RETURNING id, created_at`,
			in.FullName, in.Email, in.PasswordHash, in.Location, in.ZipCode, in.PreferredCity).
			Scan(&account.ID, &account.CreatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) || db.IsUniqueViolation(err, emailConstraint) {
				return ErrDuplicateEmail
			}
			return err
		}
		if r.audit == nil {
			return nil
		}
		return r.audit.Record(ctx, tx, shared.AuditLog{
			ActorID:  account.ID,
			Action:   "user.registered",
			Entity:   "user",
			EntityID: strconv.FormatInt(account.ID, 10),
			Meta:     map[string]any{"preferred_city": in.PreferredCity},
		})
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return Account{}, ErrDuplicateEmail
		}
		return Account{}, fmt.Errorf("%w: users: create: %w", shared.ErrStoreUnavailable, err)
	}
	return account, nil
}
