// File path: internal/llm/llm_test.go
package llm

import (
	"context"
	"reflect"
	"strings"
	"testing"
)

func TestNewProviderFallsBackToLocal(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	provider := NewProvider("gpt-4o", "text-embedding-3-small")
	if provider.Name() != "local" {
		t.Fatalf("expected local provider without API key, got %q", provider.Name())
	}
}

func TestLocalProviderChatEchoesLastMessage(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	provider := NewProvider("", "")
	reply, err := provider.Chat(context.Background(), ChatRequest{
		Messages: []Message{
			{Role: "system", Content: "Be helpful."},
			{Role: "user", Content: "  hello there  "},
		},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if !strings.HasSuffix(reply, "hello there") {
		t.Fatalf("unexpected reply: %q", reply)
	}
}

func TestLocalProviderEmbedDeterministic(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	provider := NewProvider("", "")
	first, err := provider.Embed(context.Background(), []string{"alpha", "beta"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	second, err := provider.Embed(context.Background(), []string{"alpha", "beta"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("embeddings are not deterministic")
	}
	if reflect.DeepEqual(first[0], first[1]) {
		t.Fatal("distinct texts produced identical embeddings")
	}
	for _, vec := range first {
		if len(vec) == 0 {
			t.Fatal("empty embedding vector")
		}
	}
}

func TestNormalizeMessages(t *testing.T) {
	messages, err := NormalizeMessages([]Message{
		{Role: "System", Content: "a"},
		{Role: "USER", Content: "b"},
	})
	if err != nil {
		t.Fatalf("NormalizeMessages failed: %v", err)
	}
	if messages[0].Role != "system" || messages[1].Role != "user" {
		t.Fatalf("roles not normalized: %+v", messages)
	}
	if _, err := NormalizeMessages(nil); err == nil {
		t.Fatal("expected error for empty batch")
	}
}
