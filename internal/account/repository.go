package account

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 3 * time.Second

// Repository provides access to account records.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetByEmail looks up an account. Email matching is exact (case-sensitive as
// stored).
func (r *Repository) GetByEmail(ctx context.Context, email string) (Account, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var acc Account
	err := r.db.QueryRow(ctx, `
		SELECT id, email, password_hash, role, created_at
		FROM accounts WHERE email = $1
	`, email).Scan(&acc.ID, &acc.Email, &acc.PasswordHash, &acc.Role, &acc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	return acc, err
}

// Insert persists a new account. The unique index on email is the backstop
// against racing signups.
func (r *Repository) Insert(ctx context.Context, acc Account) (Account, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO accounts (id, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, acc.ID, acc.Email, acc.PasswordHash, acc.Role).Scan(&acc.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Account{}, ErrDuplicate
		}
		return Account{}, err
	}
	return acc, nil
}
