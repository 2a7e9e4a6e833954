package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/joseph-ayodele/mtext/internal/provider"
)

func TestExtractText_Success(t *testing.T) {
	var seenKey, seenVersion string
	var seenBody map[string]any

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenKey = r.Header.Get("x-api-key")
		seenVersion = r.Header.Get("anthropic-version")
		if r.URL.Path != "/v1/messages" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&seenBody); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":" page text "}]}`))
	}))
	defer ts.Close()

	c := NewClient(Config{APIKey: "sk-ant", BaseURL: ts.URL, Model: "claude-3-5-sonnet-20241022", Timeout: 2 * time.Second}, nil)

	out, err := c.ExtractText(context.Background(), provider.Request{
		Image:    []byte("imgdata"),
		MIMEType: "image/jpeg",
		Prompt:   "extract",
	})
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if out != "page text" {
		t.Fatalf("content = %q", out)
	}
	if seenKey != "sk-ant" {
		t.Fatalf("x-api-key = %q", seenKey)
	}
	if seenVersion != apiVersion {
		t.Fatalf("anthropic-version = %q", seenVersion)
	}

	msgs := seenBody["messages"].([]any)
	parts := msgs[0].(map[string]any)["content"].([]any)
	img := parts[0].(map[string]any)
	if img["type"] != "image" {
		t.Fatalf("first part type = %v", img["type"])
	}
	source := img["source"].(map[string]any)
	if source["type"] != "base64" || source["media_type"] != "image/jpeg" {
		t.Fatalf("unexpected image source: %#v", source)
	}
	if parts[1].(map[string]any)["type"] != "text" {
		t.Fatalf("second part should be the prompt text")
	}
}

func TestExtractText_Non2xx(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"type":"overloaded_error"}}`, http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: ts.URL}, nil)
	_, err := c.ExtractText(context.Background(), provider.Request{Image: []byte("x"), MIMEType: "image/png", Prompt: "p"})
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestExtractText_NoTextBlock(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer ts.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: ts.URL}, nil)
	_, err := c.ExtractText(context.Background(), provider.Request{Image: []byte("x"), MIMEType: "image/png", Prompt: "p"})
	if err == nil || !strings.Contains(err.Error(), "no text block") {
		t.Fatalf("expected no-text-block error, got %v", err)
	}
}
