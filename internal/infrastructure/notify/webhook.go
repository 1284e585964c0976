package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/fieldmarshal/career-league/internal/platform/logging"
	"github.com/fieldmarshal/career-league/internal/platform/resilience"
	"github.com/fieldmarshal/career-league/internal/usecase"
)

var errWebhookTransient = crerr.New("notify webhook transient failure")

type WebhookConfig struct {
	HTTPClient     *http.Client
	URL            string
	AuthToken      string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// WebhookNotifier posts game events to a single outbound webhook. It
// implements usecase.Notifier; the game loop treats delivery as fire and
// forget, so the breaker only protects the hook endpoint from hammering.
type WebhookNotifier struct {
	httpClient     *http.Client
	url            string
	authToken      string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewWebhookNotifier(cfg WebhookConfig, logger *logging.Logger) (*WebhookNotifier, error) {
	if logger == nil {
		logger = logging.Default()
	}

	endpoint, err := validateHTTPURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid notify webhook url: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)
	return &WebhookNotifier{
		httpClient:     httpClient,
		url:            endpoint,
		authToken:      strings.TrimSpace(cfg.AuthToken),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}, nil
}

type eventPayload struct {
	Target  string `json:"target"`
	Message string `json:"message"`
	SentAt  string `json:"sent_at"`
}

func (n *WebhookNotifier) Notify(ctx context.Context, target, message string) error {
	if strings.TrimSpace(target) == "" || strings.TrimSpace(message) == "" {
		return fmt.Errorf("notify target and message are required")
	}

	if n.circuitEnabled {
		if err := n.breaker.Allow(); err != nil {
			n.logger.WarnContext(ctx, "notify circuit breaker rejected delivery", "state", n.breaker.State())
			return fmt.Errorf("%w: notify webhook is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	encoded, err := sonic.Marshal(eventPayload{
		Target:  target,
		Message: message,
		SentAt:  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal notify payload: %w", err)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.Write(encoded); err != nil {
		return fmt.Errorf("buffer notify payload: %w", err)
	}

	deliverErr := n.deliver(ctx, buf.Bytes())
	if n.circuitEnabled {
		if deliverErr != nil && crerr.Is(deliverErr, errWebhookTransient) {
			n.breaker.RecordFailure()
		} else {
			n.breaker.RecordSuccess()
		}
	}
	return deliverErr
}

func (n *WebhookNotifier) deliver(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create notify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+n.authToken)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return crerr.Mark(fmt.Errorf("deliver notify webhook: %w", err), errWebhookTransient)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		err := fmt.Errorf("notify webhook status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return crerr.Mark(err, errWebhookTransient)
		}
		return err
	}
	return nil
}

func validateHTTPURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", fmt.Errorf("value is empty")
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", candidate, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("%q uses unsupported scheme %q", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", fmt.Errorf("%q has empty host", candidate)
	}
	return strings.TrimRight(candidate, "/"), nil
}
