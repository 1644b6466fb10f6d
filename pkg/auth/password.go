package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost balances verification latency against brute-force resistance.
// Cost 12 keeps a single login verification well under the request timeout.
const BcryptCost = 12

// HashPassword hashes a plaintext password for storage. Used by the startup
// admin bootstrap; the gateway itself never accepts new passwords.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// ComparePassword verifies a plaintext password against a stored hash.
func ComparePassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
