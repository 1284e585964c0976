package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fieldmarshal/career-league/internal/usecase"
)

func TestStaticTokenVerifier(t *testing.T) {
	t.Parallel()

	verifier, err := NewStaticTokenVerifier([]string{"tok-1:u1:Sam", "tok-2:u2", ""})
	if err != nil {
		t.Fatalf("build verifier: %v", err)
	}

	principal, err := verifier.VerifyAccessToken(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("verify tok-1: %v", err)
	}
	if principal.UserID != "u1" || principal.Name != "Sam" {
		t.Fatalf("unexpected principal: %+v", principal)
	}

	if _, err := verifier.VerifyAccessToken(context.Background(), "unknown"); !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestStaticTokenVerifier_RejectsMalformedEntries(t *testing.T) {
	t.Parallel()

	if _, err := NewStaticTokenVerifier([]string{"just-a-token"}); err == nil {
		t.Fatalf("expected error for entry without user id")
	}
	if _, err := NewStaticTokenVerifier([]string{"tok:u1", "tok:u2"}); err == nil {
		t.Fatalf("expected error for duplicate token")
	}
}

func TestClient_VerifyAccessToken(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/introspect" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"active":true,"user_id":"u9","name":"Alex"}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL, "/v1/introspect", nil)
	principal, err := client.VerifyAccessToken(context.Background(), "opaque-token")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if principal.UserID != "u9" || principal.Name != "Alex" {
		t.Fatalf("unexpected principal: %+v", principal)
	}
}

func TestClient_InactiveTokenIsUnauthorized(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"active":false}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL, "/v1/introspect", nil)
	if _, err := client.VerifyAccessToken(context.Background(), "expired"); !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestClient_EmptyTokenIsUnauthorized(t *testing.T) {
	t.Parallel()

	client := NewClient(nil, "http://identity.local", "/v1/introspect", nil)
	if _, err := client.VerifyAccessToken(context.Background(), "  "); !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
