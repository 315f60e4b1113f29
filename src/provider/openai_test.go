package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"snapask/src/config"
)

// Minimal mirror of the chat-completions request for shape assertions.
type chatCaptureRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content []struct {
			Type     string `json:"type"`
			Text     string `json:"text"`
			ImageURL struct {
				URL string `json:"url"`
			} `json:"image_url"`
		} `json:"content"`
	} `json:"messages"`
}

func TestOpenAIWireShape(t *testing.T) {
	var captured chatCaptureRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("Unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"42"}}]}`))
	}))
	defer srv.Close()

	p := newOpenAIWithBaseURL(config.VendorConfig{APIKey: "sk", Model: "gpt-4o-mini"}, srv.URL)

	images := [][]byte{[]byte("one"), []byte("two")}
	got, err := p.Answer(context.Background(), "solve it", images)
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if got != "42" {
		t.Errorf("Expected '42', got %q", got)
	}

	if captured.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q, want gpt-4o-mini", captured.Model)
	}
	if len(captured.Messages) != 1 {
		t.Fatalf("Expected a single user message, got %d", len(captured.Messages))
	}
	msg := captured.Messages[0]
	if msg.Role != "user" {
		t.Errorf("Role = %q, want user", msg.Role)
	}
	if len(msg.Content) != len(images)+1 {
		t.Fatalf("Expected %d parts, got %d", len(images)+1, len(msg.Content))
	}
	if msg.Content[0].Type != "text" || msg.Content[0].Text != "solve it" {
		t.Errorf("First part must be the instruction text, got %+v", msg.Content[0])
	}
	for i := range images {
		part := msg.Content[i+1]
		if part.Type != "image_url" {
			t.Errorf("Part %d type = %q, want image_url", i+1, part.Type)
		}
		if !strings.HasPrefix(part.ImageURL.URL, "data:image/png;base64,") {
			t.Errorf("Part %d is not an inline base64 PNG data URL: %q", i+1, part.ImageURL.URL[:min(40, len(part.ImageURL.URL))])
		}
	}
}

func TestOpenAINoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p := newOpenAIWithBaseURL(config.VendorConfig{APIKey: "sk", Model: "gpt-4o-mini"}, srv.URL)
	if _, err := p.Answer(context.Background(), "q", nil); err == nil {
		t.Fatal("Expected error when response has no choices")
	}
}
