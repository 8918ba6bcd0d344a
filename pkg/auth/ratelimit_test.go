package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arcadia-data/preview/pkg/auth"
)

func TestRateLimitMiddleware_UnderLimit(t *testing.T) {
	store := auth.NewMemoryLimiterStore()
	policy := auth.LimitPolicy{RPM: 60, Burst: 10}
	middleware := auth.RateLimitMiddleware(store, policy)

	called := false
	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/v1/preview", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if !called {
		t.Error("handler should be called when under rate limit")
	}
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestRateLimitMiddleware_OverLimit(t *testing.T) {
	store := auth.NewMemoryLimiterStore()
	// Very strict: 1 RPM, burst of 1
	policy := auth.LimitPolicy{RPM: 1, Burst: 1}
	middleware := auth.RateLimitMiddleware(store, policy)

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// First request: should pass
	req1 := httptest.NewRequest("GET", "/v1/preview", nil)
	w1 := httptest.NewRecorder()
	handler.ServeHTTP(w1, req1)

	if w1.Code != http.StatusOK {
		t.Errorf("first request: expected 200, got %d", w1.Code)
	}

	// Second request: should be rate limited
	req2 := httptest.NewRequest("GET", "/v1/preview", nil)
	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, req2)

	if w2.Code != http.StatusTooManyRequests {
		t.Errorf("second request: expected 429, got %d", w2.Code)
	}
	if ra := w2.Header().Get("Retry-After"); ra == "" {
		t.Error("expected Retry-After header on 429 response")
	}
}

func TestRateLimitMiddleware_NilStoreFailsOpen(t *testing.T) {
	middleware := auth.RateLimitMiddleware(nil, auth.LimitPolicy{RPM: 1, Burst: 1})

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/v1/preview", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
}

func TestMemoryLimiterStore_SeparateActors(t *testing.T) {
	store := auth.NewMemoryLimiterStore()
	policy := auth.LimitPolicy{RPM: 1, Burst: 1}

	allowed, err := store.Allow(context.Background(), "actor-a", policy, 1)
	if err != nil || !allowed {
		t.Fatalf("actor-a first request: allowed=%v err=%v", allowed, err)
	}
	allowed, err = store.Allow(context.Background(), "actor-a", policy, 1)
	if err != nil || allowed {
		t.Fatalf("actor-a second request: expected denial, allowed=%v err=%v", allowed, err)
	}

	// A different actor has its own bucket
	allowed, err = store.Allow(context.Background(), "actor-b", policy, 1)
	if err != nil || !allowed {
		t.Fatalf("actor-b first request: allowed=%v err=%v", allowed, err)
	}
}
