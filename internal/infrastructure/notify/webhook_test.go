package notify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/fieldmarshal/career-league/internal/platform/logging"
	"github.com/fieldmarshal/career-league/internal/platform/resilience"
	"github.com/fieldmarshal/career-league/internal/usecase"
)

func TestWebhookNotifier_DeliversPayload(t *testing.T) {
	t.Parallel()

	var got eventPayload
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = sonic.Unmarshal(body, &got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	notifier, err := NewWebhookNotifier(WebhookConfig{URL: server.URL, AuthToken: "secret"}, logging.NewNop())
	if err != nil {
		t.Fatalf("new notifier: %v", err)
	}

	if err := notifier.Notify(context.Background(), "user:u1", "kickoff in an hour"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if got.Target != "user:u1" || got.Message != "kickoff in an hour" {
		t.Fatalf("delivered payload: %+v", got)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("authorization header: %q", gotAuth)
	}
}

func TestWebhookNotifier_RejectsBadConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewWebhookNotifier(WebhookConfig{URL: "ftp://nope"}, logging.NewNop()); err == nil {
		t.Fatal("ftp scheme accepted")
	}
	if _, err := NewWebhookNotifier(WebhookConfig{}, logging.NewNop()); err == nil {
		t.Fatal("empty url accepted")
	}
}

func TestWebhookNotifier_BreakerOpensOnServerErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	notifier, err := NewWebhookNotifier(WebhookConfig{
		URL: server.URL,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	}, logging.NewNop())
	if err != nil {
		t.Fatalf("new notifier: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := notifier.Notify(ctx, "channel:league", "ping"); err == nil {
			t.Fatal("server error reported as success")
		}
	}
	err = notifier.Notify(ctx, "channel:league", "ping")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("open breaker: got=%v want ErrDependencyUnavailable", err)
	}
}
