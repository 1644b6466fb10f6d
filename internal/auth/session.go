package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mjdocs/gateway/internal/models"
)

// SessionIssuer mints the JWT session handed to an admin client after a
// successful login. The gateway only issues sessions; refresh, revocation and
// verification happen on the resource side.
type SessionIssuer struct {
	secret             string
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
}

// NewSessionIssuer creates a SessionIssuer signing with the given secret.
func NewSessionIssuer(secret string, accessExpiry, refreshExpiry time.Duration) *SessionIssuer {
	return &SessionIssuer{
		secret:             secret,
		accessTokenExpiry:  accessExpiry,
		refreshTokenExpiry: refreshExpiry,
	}
}

// Issue mints an access/refresh token pair for the given account.
func (si *SessionIssuer) Issue(userID, email string) (*models.Session, error) {
	accessToken, err := si.sign("access", userID, email, si.accessTokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := si.sign("refresh", userID, email, si.refreshTokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &models.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(si.accessTokenExpiry.Seconds()),
	}, nil
}

func (si *SessionIssuer) sign(tokenType, userID, email string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &models.TokenClaims{
		Type:   tokenType,
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(si.secret))
}

// Parse verifies a token minted by this issuer and returns its claims.
// Exposed for tests and for operators debugging issued sessions.
func (si *SessionIssuer) Parse(tokenString string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(si.secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
