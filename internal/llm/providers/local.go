// File path: internal/llm/providers/local.go
package providers

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
)

const localEmbedDim = 8

// LocalProvider is an offline fallback used when no API key is configured.
// Chat echoes the last message; Embed derives deterministic vectors from a
// hash of the input so retrieval stays exercisable without a remote service.
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

func (l *LocalProvider) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if len(req.Messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}
	last := req.Messages[len(req.Messages)-1].Content
	return "[local-stub] " + strings.TrimSpace(last), nil
}

func (l *LocalProvider) Embed(ctx context.Context, input []string) ([][]float64, error) {
	vectors := make([][]float64, len(input))
	for i, text := range input {
		vec := make([]float64, localEmbedDim)
		h := fnv.New64a()
		h.Write([]byte(text))
		seed := h.Sum64()
		for j := range vec {
			seed = seed*6364136223846793005 + 1442695040888963407
			vec[j] = float64(int64(seed>>16)%1000) / 1000.0
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (l *LocalProvider) Name() string {
	return "local"
}
