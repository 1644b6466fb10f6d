package integration

import (
	"context"
	"fmt"

	"github.com/mjdocs/gateway/internal/models"
	pkgauth "github.com/mjdocs/gateway/pkg/auth"
)

// SeedAdmin creates an account with a profile and admin role grant, returning
// the new account ID.
func (db *TestDB) SeedAdmin(ctx context.Context, username, email, password string) (string, error) {
	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	var userID string
	err = db.Pool.QueryRow(ctx,
		`INSERT INTO accounts (email, password_hash) VALUES ($1, $2) RETURNING id`,
		email, hash,
	).Scan(&userID)
	if err != nil {
		return "", fmt.Errorf("failed to insert account: %w", err)
	}

	if _, err := db.Pool.Exec(ctx,
		`INSERT INTO profiles (user_id, username) VALUES ($1, $2)`,
		userID, username,
	); err != nil {
		return "", fmt.Errorf("failed to insert profile: %w", err)
	}

	if _, err := db.Pool.Exec(ctx,
		`INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`,
		userID, models.RoleAdmin,
	); err != nil {
		return "", fmt.Errorf("failed to grant role: %w", err)
	}

	return userID, nil
}

// SeedUser creates an account with a profile but no role grants.
func (db *TestDB) SeedUser(ctx context.Context, username, email, password string) (string, error) {
	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	var userID string
	err = db.Pool.QueryRow(ctx,
		`INSERT INTO accounts (email, password_hash) VALUES ($1, $2) RETURNING id`,
		email, hash,
	).Scan(&userID)
	if err != nil {
		return "", fmt.Errorf("failed to insert account: %w", err)
	}

	if _, err := db.Pool.Exec(ctx,
		`INSERT INTO profiles (user_id, username) VALUES ($1, $2)`,
		userID, username,
	); err != nil {
		return "", fmt.Errorf("failed to insert profile: %w", err)
	}

	return userID, nil
}

// SeedDocument inserts a document row and returns its ID.
func (db *TestDB) SeedDocument(ctx context.Context, filePath, fileName, status string, downloadCount int64) (string, error) {
	var id string
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO documents (file_path, file_name, status, download_count)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		filePath, fileName, status, downloadCount,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert document: %w", err)
	}
	return id, nil
}
