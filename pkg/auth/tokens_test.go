package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/arcadia-data/preview/pkg/auth"
)

func TestStaticTokenProvider(t *testing.T) {
	p := &auth.StaticTokenProvider{Value: "fixed-token"}
	tok, err := p.Token(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "fixed-token" {
		t.Errorf("expected 'fixed-token', got %q", tok)
	}
}

func TestServiceTokenProvider_MintsValidToken(t *testing.T) {
	p := auth.NewServiceTokenProvider(testSecret, "preview-service", 10*time.Minute)

	tok, err := p.Token(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	validator := auth.NewJWTValidator(testSecret)
	claims, err := validator.Validate(tok)
	if err != nil {
		t.Fatalf("minted token failed validation: %v", err)
	}
	if claims.Subject != "preview-service" {
		t.Errorf("expected subject 'preview-service', got %q", claims.Subject)
	}
}

func TestServiceTokenProvider_CachesUntilNearExpiry(t *testing.T) {
	p := auth.NewServiceTokenProvider(testSecret, "preview-service", 10*time.Minute)

	tok1, err := p.Token(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tok2, err := p.Token(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok1 != tok2 {
		t.Error("expected cached token on second call")
	}
}
