// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// claudeTestServer stands in for the Claude API and captures the request.
func claudeTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	orig := claudeAPIURL
	claudeAPIURL = srv.URL
	t.Cleanup(func() { claudeAPIURL = orig })

	return srv
}

func TestClaudeBackendExtract(t *testing.T) {
	var gotReq claudeRequest
	var gotAPIKey, gotVersion string

	claudeTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}

		resp := claudeResponse{Content: []claudeContent{
			{Type: "text", Text: `{"entities": [{"name": "Acme Corp", "type": "organization", "mentions": 3, "confidence": 0.95}]}`},
		}}
		json.NewEncoder(w).Encode(resp)
	})

	backend := &ClaudeBackend{APIKey: "test-key", Model: "test-model"}
	resp, err := backend.Extract(context.Background(), "Acme Corp builds widgets.")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	if gotAPIKey != "test-key" {
		t.Errorf("x-api-key = %q", gotAPIKey)
	}
	if gotVersion != "2023-06-01" {
		t.Errorf("anthropic-version = %q", gotVersion)
	}
	if gotReq.Model != "test-model" {
		t.Errorf("request model = %q", gotReq.Model)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Role != "user" {
		t.Fatalf("unexpected messages: %v", gotReq.Messages)
	}

	if len(resp.Entities) != 1 {
		t.Fatalf("got %d entities, want 1", len(resp.Entities))
	}
	e := resp.Entities[0]
	if e.Name != "Acme Corp" || e.Type != "organization" || e.Mentions != 3 || e.Confidence != 0.95 {
		t.Errorf("unexpected entity: %+v", e)
	}
}

func TestClaudeBackendAPIError(t *testing.T) {
	claudeTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "overloaded"}`, http.StatusServiceUnavailable)
	})

	backend := &ClaudeBackend{APIKey: "test-key", Model: "test-model"}
	_, err := backend.Extract(context.Background(), "text")
	if err == nil {
		t.Fatal("Extract() succeeded on API error")
	}
}

func TestClaudeBackendNonJSONContent(t *testing.T) {
	claudeTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		resp := claudeResponse{Content: []claudeContent{
			{Type: "text", Text: "I could not find any entities."},
		}}
		json.NewEncoder(w).Encode(resp)
	})

	backend := &ClaudeBackend{APIKey: "test-key", Model: "test-model"}
	_, err := backend.Extract(context.Background(), "text")
	if err == nil {
		t.Fatal("Extract() succeeded on non-JSON content")
	}
}

func TestClaudeBackendEmptyContent(t *testing.T) {
	claudeTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(claudeResponse{})
	})

	backend := &ClaudeBackend{APIKey: "test-key", Model: "test-model"}
	_, err := backend.Extract(context.Background(), "text")
	if err == nil {
		t.Fatal("Extract() succeeded on empty content")
	}
}
