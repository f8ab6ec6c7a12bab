package utils

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	jwtMu     sync.RWMutex
	jwtSecret []byte
	jwtIssuer = "staff-sync-backend"
)

// ErrJWTNotConfigured is returned when tokens are used before InitJWT.
var ErrJWTNotConfigured = errors.New("jwt secret not configured")

// Claims defines the JWT claims structure
type Claims struct {
	UserID  int64  `json:"user_id"`
	StaffID string `json:"staff_id"`
	Role    string `json:"role"` // User role for authorization
	jwt.RegisteredClaims
}

// InitJWT sets the signing secret and issuer used by GenerateAccessToken and ValidateToken.
func InitJWT(secret, issuer string) {
	jwtMu.Lock()
	defer jwtMu.Unlock()
	jwtSecret = []byte(secret)
	if issuer != "" {
		jwtIssuer = issuer
	}
}

func signingKey() ([]byte, string, error) {
	jwtMu.RLock()
	defer jwtMu.RUnlock()
	if len(jwtSecret) == 0 {
		return nil, "", ErrJWTNotConfigured
	}
	return jwtSecret, jwtIssuer, nil
}

// GenerateAccessToken creates a signed token and returns it together with its jti.
func GenerateAccessToken(userID int64, staffID, role string, expiresAt time.Time) (string, string, error) {
	key, issuer, err := signingKey()
	if err != nil {
		return "", "", err
	}
	tokenID := uuid.NewString()
	claims := &Claims{
		UserID:  userID,
		StaffID: staffID,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(key)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return tokenString, tokenID, nil
}

// ValidateToken parses and validates a JWT token string.
// It returns the claims if the token is valid, otherwise an error.
func ValidateToken(tokenString string) (*Claims, error) {
	key, issuer, err := signingKey()
	if err != nil {
		return nil, err
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
