// Package auth provides JWT validation, request identity, and per-actor
// rate limiting for the preview API.
package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// PreviewClaims are the JWT claims expected by the preview API.
type PreviewClaims struct {
	jwt.RegisteredClaims
	TenantID string   `json:"tenant_id"`
	Scopes   []string `json:"scopes"`
}

// JWTValidator validates HS256 bearer tokens against a shared secret.
type JWTValidator struct {
	secret []byte
}

// NewJWTValidator creates a validator. An empty secret returns nil, which
// the middleware treats as fail-closed.
func NewJWTValidator(secret []byte) *JWTValidator {
	if len(secret) == 0 {
		return nil
	}
	return &JWTValidator{secret: secret}
}

// Validate parses and validates a JWT token string.
func (v *JWTValidator) Validate(tokenStr string) (*PreviewClaims, error) {
	if v == nil || len(v.secret) == 0 {
		return nil, fmt.Errorf("validator uninitialized")
	}

	claims := &PreviewClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
