package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mjdocs/gateway/internal/database"
	"github.com/mjdocs/gateway/internal/models"
)

// AccountRepository reads the account, profile and role-grant tables that
// back admin authentication.
type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{pool: db.Pool}
}

// GetProfileByUsername resolves a profile by username, case-insensitively.
func (r *AccountRepository) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	query := `
		SELECT user_id, username, created_at
		FROM profiles WHERE LOWER(username) = LOWER($1)
	`

	var profile models.Profile
	err := r.pool.QueryRow(ctx, query, username).Scan(
		&profile.UserID, &profile.Username, &profile.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &profile, nil
}

// GetAccountByID fetches the credential record for an account.
func (r *AccountRepository) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM accounts WHERE id = $1
	`
	return r.scanAccount(r.pool.QueryRow(ctx, query, id))
}

// GetAccountByEmail fetches the credential record keyed by login identifier.
func (r *AccountRepository) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM accounts WHERE LOWER(email) = LOWER($1)
	`
	return r.scanAccount(r.pool.QueryRow(ctx, query, email))
}

// HasRole reports whether the account holds the given role grant.
func (r *AccountRepository) HasRole(ctx context.Context, userID, role string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, role).Scan(&exists); err != nil {
		return false, database.MapPostgresError(err)
	}
	return exists, nil
}

// CreateAccount inserts a credential record and returns its id. Used by the
// startup admin bootstrap only.
func (r *AccountRepository) CreateAccount(ctx context.Context, email, passwordHash string) (string, error) {
	query := `
		INSERT INTO accounts (email, password_hash)
		VALUES ($1, $2)
		RETURNING id
	`

	var id string
	if err := r.pool.QueryRow(ctx, query, email, passwordHash).Scan(&id); err != nil {
		return "", fmt.Errorf("failed to create account: %w", database.MapPostgresError(err))
	}
	return id, nil
}

// UpsertProfile creates or updates the profile row for an account.
func (r *AccountRepository) UpsertProfile(ctx context.Context, userID, username string) error {
	query := `
		INSERT INTO profiles (user_id, username)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET username = EXCLUDED.username
	`

	if _, err := r.pool.Exec(ctx, query, userID, username); err != nil {
		return fmt.Errorf("failed to upsert profile: %w", database.MapPostgresError(err))
	}
	return nil
}

// GrantRole assigns a role to an account, idempotently.
func (r *AccountRepository) GrantRole(ctx context.Context, userID, role string) error {
	query := `
		INSERT INTO user_roles (user_id, role)
		VALUES ($1, $2)
		ON CONFLICT (user_id, role) DO NOTHING
	`

	if _, err := r.pool.Exec(ctx, query, userID, role); err != nil {
		return fmt.Errorf("failed to grant role: %w", database.MapPostgresError(err))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *AccountRepository) scanAccount(scanner rowScanner) (*models.Account, error) {
	var account models.Account
	err := scanner.Scan(
		&account.ID, &account.Email, &account.PasswordHash, &account.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &account, nil
}
