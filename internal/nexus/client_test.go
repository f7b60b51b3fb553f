package nexus

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hrmshandy/treasure-chest/internal/nxm"
)

func testRequest() nxm.Request {
	return nxm.Request{
		Game:    "stardewvalley",
		ModID:   2400,
		FileID:  9567,
		Key:     "abc123",
		Expires: 1735344000,
		UserID:  42,
	}
}

func TestResolveDownloadURL(t *testing.T) {
	var gotPath, gotKey, gotAPIKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		gotAPIKey = r.Header.Get("apikey")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name":"EU CDN","short_name":"eu","URI":"https://cdn.example.com/mod.zip"}]`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "secret", BaseURL: server.URL})

	uri, err := client.ResolveDownloadURL(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if uri != "https://cdn.example.com/mod.zip" {
		t.Errorf("Expected CDN URI, got '%s'", uri)
	}
	if gotPath != "/v1/games/stardewvalley/mods/2400/files/9567/download_link.json" {
		t.Errorf("Unexpected request path: %s", gotPath)
	}
	if gotKey != "abc123" {
		t.Errorf("Expected key 'abc123', got '%s'", gotKey)
	}
	if gotAPIKey != "secret" {
		t.Errorf("Expected apikey header 'secret', got '%s'", gotAPIKey)
	}
}

func TestResolveDownloadURLMissingKey(t *testing.T) {
	client := NewClient(Config{})
	_, err := client.ResolveDownloadURL(context.Background(), testRequest())
	if !errors.Is(err, ErrAPIKeyMissing) {
		t.Errorf("Expected ErrAPIKeyMissing, got %v", err)
	}
}

func TestResolveDownloadURLAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid key"}`, http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "secret", BaseURL: server.URL})

	_, err := client.ResolveDownloadURL(context.Background(), testRequest())
	if err == nil {
		t.Fatal("Expected error for 403 response")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", apiErr.StatusCode)
	}
	if !strings.Contains(apiErr.Body, "invalid key") {
		t.Errorf("Expected error body to be captured, got '%s'", apiErr.Body)
	}
}

func TestResolveDownloadURLEmptyLinks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "secret", BaseURL: server.URL})

	if _, err := client.ResolveDownloadURL(context.Background(), testRequest()); err == nil {
		t.Error("Expected error for empty link list")
	}
}
