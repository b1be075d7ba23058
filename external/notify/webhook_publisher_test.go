package notify

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/courtside/ranking/internal/platform/resilience"
	"github.com/courtside/ranking/internal/usecase"
)

func TestWebhookPublisher_Publish_PostsEventJSON(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	publisher := NewWebhookPublisher(WebhookPublisherConfig{
		Endpoint: server.URL,
		Token:    "hook-token",
	}, nil)

	err := publisher.Publish(t.Context(), usecase.ChangeEvent{
		Type:       usecase.EventAthletePromoted,
		AthleteID:  "athlete-1",
		OccurredAt: time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	if gotAuth != "Bearer hook-token" {
		t.Fatalf("authorization header = %q, want bearer token", gotAuth)
	}

	var delivered usecase.ChangeEvent
	if err := json.Unmarshal(gotBody, &delivered); err != nil {
		t.Fatalf("unmarshal delivered body: %v", err)
	}
	if delivered.Type != usecase.EventAthletePromoted || delivered.AthleteID != "athlete-1" {
		t.Fatalf("unexpected delivered event: %+v", delivered)
	}
}

func TestWebhookPublisher_Publish_CircuitOpensOnRepeatedServerErrors(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	publisher := NewWebhookPublisher(WebhookPublisherConfig{
		Endpoint: server.URL,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	}, nil)

	for i := 0; i < 2; i++ {
		if err := publisher.Publish(t.Context(), usecase.ChangeEvent{Type: "test"}); err == nil {
			t.Fatalf("expected error from 500 response")
		}
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("server hit %d times, want 2", got)
	}

	// Threshold reached: the breaker fails fast without touching the endpoint.
	err := publisher.Publish(t.Context(), usecase.ChangeEvent{Type: "test"})
	if err == nil || !strings.Contains(err.Error(), "temporarily unavailable") {
		t.Fatalf("expected circuit rejection, got %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("open circuit must not call the endpoint, hits = %d", got)
	}
}

func TestWebhookPublisher_Publish_ClientErrorDoesNotTripCircuit(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	publisher := NewWebhookPublisher(WebhookPublisherConfig{
		Endpoint: server.URL,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	}, nil)

	for i := 0; i < 4; i++ {
		if err := publisher.Publish(t.Context(), usecase.ChangeEvent{Type: "test"}); err == nil {
			t.Fatalf("expected error from 404 response")
		}
	}
	if got := hits.Load(); got != 4 {
		t.Fatalf("breaker must stay closed on client errors, hits = %d", got)
	}
}

func TestWebhookPublisher_Publish_RejectsInvalidEndpoint(t *testing.T) {
	t.Parallel()

	cases := []string{"", "ftp://example.com/hook", "https://"}
	for _, endpoint := range cases {
		publisher := NewWebhookPublisher(WebhookPublisherConfig{Endpoint: endpoint}, nil)
		if err := publisher.Publish(t.Context(), usecase.ChangeEvent{Type: "test"}); err == nil {
			t.Fatalf("expected error for endpoint %q", endpoint)
		}
	}
}

func TestBuildWebhookCurlPreview_MasksToken(t *testing.T) {
	t.Parallel()

	preview := buildWebhookCurlPreview("https://hooks.example.com/ranking", `{"type":"test"}`, true)
	if !strings.Contains(preview, "Authorization: Bearer ***") {
		t.Fatalf("preview must mask the token, got %s", preview)
	}
	if strings.Contains(preview, "hook-token") {
		t.Fatalf("preview leaked the token: %s", preview)
	}
}

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	if got := truncateForLog("short", 10); got != "short" {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := truncateForLog("0123456789abcdef", 10); got != "0123456789...(truncated)" {
		t.Fatalf("unexpected truncation: %q", got)
	}
}
