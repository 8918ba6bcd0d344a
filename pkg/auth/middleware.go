package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/arcadia-data/preview/pkg/api"
)

type principalKey struct{}

// Principal identifies the authenticated caller.
type Principal struct {
	ID       string
	TenantID string
	Scopes   []string
}

// WithPrincipal attaches the principal to the context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// GetPrincipal extracts the principal from the context, nil if absent.
func GetPrincipal(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}

// publicPaths are endpoints that do not require authentication.
var publicPaths = []string{
	"/health",
}

// isPublicPath checks if the path should be accessible without auth.
// Media lease URLs are capability URLs: browsers fetch <img>/<audio>/
// <embed> sources without an Authorization header, so the unguessable
// lease ID is the credential there.
func isPublicPath(path string) bool {
	if strings.HasPrefix(path, "/v1/media/") {
		return true
	}
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}

// NewMiddleware creates JWT auth middleware.
// If validator is nil, all non-public requests are rejected (fail closed).
func NewMiddleware(validator *JWTValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Allow public paths
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			// 2. Extract Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.WriteUnauthorized(w, "Missing Authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				api.WriteUnauthorized(w, "Invalid Authorization header format (expected 'Bearer <token>')")
				return
			}
			tokenStr := parts[1]

			// 3. Fail closed if no validator configured
			if validator == nil {
				api.WriteUnauthorized(w, "Authentication not configured")
				return
			}

			// 4. Validate JWT
			claims, err := validator.Validate(tokenStr)
			if err != nil {
				api.WriteUnauthorized(w, "Invalid or expired token")
				return
			}
			if claims.Subject == "" {
				api.WriteUnauthorized(w, "Token subject is required")
				return
			}

			// 5. Inject principal into context
			principal := &Principal{
				ID:       claims.Subject,
				TenantID: claims.TenantID,
				Scopes:   claims.Scopes,
			}
			ctx := WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
