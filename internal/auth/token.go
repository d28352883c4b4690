// Package auth issues and verifies signed session tokens.
// Tokens are bearer credentials: possession implies authorization, there is
// no server-side session store and no revocation list. Expiry is absolute
// from issuance.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that cannot be fully trusted:
// parse failures, signature mismatches and expired tokens all collapse into
// this single error so that no partially-trusted claims ever escape.
var ErrInvalidToken = errors.New("invalid token")

// Claims binds an identity key to the standard registered claim set.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// Issuer creates and verifies session tokens with a server-held secret.
type Issuer struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// NewIssuer creates a token issuer. The secret must be non-empty; an empty
// secret is a configuration error the process should refuse to start with.
func NewIssuer(secret string, lifetime time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("JWT secret is required")
	}
	if lifetime <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive, got %s", lifetime)
	}
	return &Issuer{
		secret:   []byte(secret),
		lifetime: lifetime,
		now:      time.Now,
	}, nil
}

// WithClock overrides the time source. For tests.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// Issue signs a token binding the subject, issuance time and expiry.
func (i *Issuer) Issue(userID string) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.lifetime)),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks signature integrity and expiry and returns the bound
// identity key. Fails closed: any problem yields ErrInvalidToken.
func (i *Issuer) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	if claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

// Lifetime returns the configured token lifetime.
func (i *Issuer) Lifetime() time.Duration {
	return i.lifetime
}
