package auth

import (
	"chat-desk/domain"
	"chat-desk/errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminClaims is what a signed admin token carries. The subject is the admin id.
type AdminClaims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies admin bearer tokens signed with HS256.
type Tokens struct {
	secret   []byte
	issuer   string
	duration time.Duration
	now      func() time.Time
}

func NewTokens(secret, issuer string, duration time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), issuer: issuer, duration: duration, now: time.Now}
}

// Issue creates a signed token for adminID.
func (t *Tokens) Issue(adminID string) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.duration)
	claims := &AdminClaims{
		Role: domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %w", errors.ErrTokenGeneration, err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature, issuer and expiry and returns the admin id.
// Every failure maps to ErrInvalidToken.
func (t *Tokens) Verify(token string) (string, error) {
	claims := &AdminClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Role != domain.RoleAdmin || claims.Subject == "" {
		return "", errors.ErrInvalidToken
	}
	return claims.Subject, nil
}
