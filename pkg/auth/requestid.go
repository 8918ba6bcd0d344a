package auth

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// HeaderRequestID is the correlation header shared with clients.
const HeaderRequestID = "X-Request-ID"

type requestIDKey struct{}

// RequestIDMiddleware tags every request with a correlation ID. A
// client-supplied X-Request-ID is honored so preview panels can be
// traced across the calling application and this service; otherwise a
// fresh UUID is minted. The ID is echoed on the response and stored in
// the request context for problem responses and logs.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(HeaderRequestID, id)

		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the correlation ID for the request, empty when
// the middleware did not run.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
