package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mall-api/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountAlreadyExists = errors.New("account with this username already exists")
)

// uniqueViolation is the SQLSTATE code Postgres raises when an insert
// hits a unique constraint.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	UpdateProfile(ctx context.Context, username, fullName, address, paymentInfo string) (int64, error)
}

type accountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new instance of AccountRepository
func NewAccountRepository(db *sql.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Create inserts a new account into the database using parameterized queries.
// Duplicate usernames are rejected by the unique constraint on the table.
func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, username, password_hash, role, full_name, address, payment_info, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		account.ID,
		account.Username,
		account.PasswordHash,
		account.Role,
		account.FullName,
		account.Address,
		account.PaymentInfo,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrAccountAlreadyExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// FindByUsername retrieves an account by username using parameterized queries
func (r *accountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	query := `
		SELECT id, username, password_hash, role, full_name, address, payment_info, created_at, updated_at
		FROM accounts
		WHERE username = $1
	`

	account := &domain.Account{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&account.ID,
		&account.Username,
		&account.PasswordHash,
		&account.Role,
		&account.FullName,
		&account.Address,
		&account.PaymentInfo,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account by username: %w", err)
	}

	return account, nil
}

// FindByID retrieves an account by its surrogate key. Only internal paths
// (session resolution) use this; everything application-facing looks up by
// username.
func (r *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `
		SELECT id, username, password_hash, role, full_name, address, payment_info, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	account := &domain.Account{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&account.Username,
		&account.PasswordHash,
		&account.Role,
		&account.FullName,
		&account.Address,
		&account.PaymentInfo,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID: %w", err)
	}

	return account, nil
}

// UpdateProfile updates the three mutable profile fields for the account
// matching username. It returns the number of rows matched; zero means the
// username is unknown, which callers treat as a successful no-op.
func (r *accountRepository) UpdateProfile(ctx context.Context, username, fullName, address, paymentInfo string) (int64, error) {
	query := `
		UPDATE accounts
		SET full_name = $2, address = $3, payment_info = $4, updated_at = NOW()
		WHERE username = $1
	`

	result, err := r.db.ExecContext(ctx, query, username, fullName, address, paymentInfo)
	if err != nil {
		return 0, fmt.Errorf("failed to update account profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
