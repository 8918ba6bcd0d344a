package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// StaticTokenProvider hands out one fixed token, used when the upstream
// content host expects a long-lived service credential.
type StaticTokenProvider struct {
	Value string
}

// Token returns the configured token.
func (p *StaticTokenProvider) Token(context.Context) (string, error) {
	return p.Value, nil
}

// ServiceTokenProvider mints short-lived HS256 service tokens for
// outbound content fetches and caches each until near expiry.
type ServiceTokenProvider struct {
	secret  []byte
	subject string
	ttl     time.Duration
	now     func() time.Time

	mu      sync.Mutex
	cached  string
	expires time.Time
}

// NewServiceTokenProvider creates a provider signing with secret on
// behalf of subject. Tokens live for ttl (minimum one minute).
func NewServiceTokenProvider(secret []byte, subject string, ttl time.Duration) *ServiceTokenProvider {
	if ttl < time.Minute {
		ttl = time.Minute
	}
	return &ServiceTokenProvider{
		secret:  secret,
		subject: subject,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Token returns a valid service token, minting a fresh one when the
// cached token is within a minute of expiry.
func (p *ServiceTokenProvider) Token(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if p.cached != "" && now.Before(p.expires.Add(-time.Minute)) {
		return p.cached, nil
	}

	expires := now.Add(p.ttl)
	claims := &PreviewClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign service token: %w", err)
	}

	p.cached = signed
	p.expires = expires
	return signed, nil
}
