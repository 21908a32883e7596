package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWebhookNotifierSuccess(t *testing.T) {
	t.Parallel()

	var gotBody DistributionEvent

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n, err := NewWebhookNotifier(server.URL)
	if err != nil {
		t.Fatalf("NewWebhookNotifier() error = %v", err)
	}

	event := DistributionEvent{
		DistributionID: "d-1",
		Name:           "march leads",
		Status:         "COMPLETED",
		TotalItems:     13,
		TasksCreated:   13,
	}
	if err := n.NotifyDistribution(context.Background(), event); err != nil {
		t.Fatalf("NotifyDistribution() unexpected error = %v", err)
	}

	if gotBody.DistributionID != "d-1" {
		t.Fatalf("distributionId = %q, want d-1", gotBody.DistributionID)
	}
	if gotBody.Status != "COMPLETED" {
		t.Fatalf("status = %q, want COMPLETED", gotBody.Status)
	}
	if gotBody.TasksCreated != 13 {
		t.Fatalf("tasksCreated = %d, want 13", gotBody.TasksCreated)
	}
}

func TestWebhookNotifierNonSuccessStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	}))
	defer server.Close()

	n, err := NewWebhookNotifier(server.URL)
	if err != nil {
		t.Fatalf("NewWebhookNotifier() error = %v", err)
	}

	err = n.NotifyDistribution(context.Background(), DistributionEvent{DistributionID: "d-1", Status: "FAILED"})
	if err == nil {
		t.Fatal("NotifyDistribution() expected error for 502, got nil")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Fatalf("error = %v, want status code in message", err)
	}
}

func TestNewWebhookNotifierValidatesEndpoint(t *testing.T) {
	t.Parallel()

	if _, err := NewWebhookNotifier(""); err == nil {
		t.Fatal("NewWebhookNotifier() with empty endpoint expected error")
	}
	if _, err := NewWebhookNotifier("not a url"); err == nil {
		t.Fatal("NewWebhookNotifier() with invalid endpoint expected error")
	}
}

func TestWebhookNotifierRequiresDistributionID(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent for an empty event")
	}))
	defer server.Close()

	n, err := NewWebhookNotifier(server.URL)
	if err != nil {
		t.Fatalf("NewWebhookNotifier() error = %v", err)
	}

	if err := n.NotifyDistribution(context.Background(), DistributionEvent{}); err == nil {
		t.Fatal("NotifyDistribution() expected error for missing distribution id")
	}
}
