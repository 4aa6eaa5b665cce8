// File path: internal/llm/providers/provider.go
package providers

import "context"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest describes a single completion call. Temperature and MaxTokens
// override the provider defaults when set; Model overrides the configured
// chat model.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Provider is the narrow contract the assistant needs from a language model
// service: chat completions and batch embeddings. Embed must return one
// vector per input, in input order.
type Provider interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
	Embed(ctx context.Context, input []string) ([][]float64, error)
	Name() string
}
