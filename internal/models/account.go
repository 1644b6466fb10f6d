package models

import "time"

// Account is an authentication record in the credential store.
// The email is the canonical login identifier; clients never see it directly.
type Account struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// Profile maps a human-chosen username to an account. Username uniqueness is
// case-insensitive (enforced by a LOWER(username) unique index).
type Profile struct {
	UserID    string    `db:"user_id"`
	Username  string    `db:"username"`
	CreatedAt time.Time `db:"created_at"`
}

// RoleGrant authorizes an account for a role. The existence of an "admin"
// grant is the sole admin-authorization predicate.
type RoleGrant struct {
	UserID string `db:"user_id"`
	Role   string `db:"role"`
}

const RoleAdmin = "admin"

// AdminUser is the user payload returned to the client after a successful
// admin login.
type AdminUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
