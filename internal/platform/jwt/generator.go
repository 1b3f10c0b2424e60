// Package jwtmw issues and verifies the HS256 access tokens handed out by the local identity provider.
package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by Parse for malformed, tampered or expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the verified content of an access token.
type Claims struct {
	UserID string
	Email  string
}

// Generator creates signed JWT tokens.
type Generator interface {
	// GenerateToken creates a signed JWT token for the given user.
	GenerateToken(userID, email string) (string, error)
}

// Parser verifies JWT tokens.
type Parser interface {
	// Parse verifies the signature and expiry of tokenStr and returns its claims.
	Parse(tokenStr string) (*Claims, error)
}

// generator implements Generator and Parser with a shared HMAC secret.
type generator struct {
	secret     []byte
	expiration time.Duration
}

var (
	_ Generator = (*generator)(nil)
	_ Parser    = (*generator)(nil)
)

// NewGenerator creates a new JWT generator with the provided secret and expiration duration.
func NewGenerator(secret string, expiration time.Duration) *generator {
	return &generator{
		secret:     []byte(secret),
		expiration: expiration,
	}
}

// GenerateToken creates a signed JWT token with standard claims.
func (g *generator) GenerateToken(userID, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"exp":   now.Add(g.expiration).Unix(),
		"iat":   now.Unix(),
		"email": email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Parse verifies tokenStr. Only HMAC-signed tokens with a non-empty subject are accepted.
func (g *generator) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// Check signing algorithm (only HMAC allowed)
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return g.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	return &Claims{UserID: sub, Email: email}, nil
}
