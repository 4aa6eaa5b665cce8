// File path: internal/docs/processor_test.go
package docs

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/quillon/docchat/internal/llm"
)

type stubProvider struct {
	chatReply string
	chatErr   error
	chatCalls int
	lastReq   llm.ChatRequest
}

func (s *stubProvider) Chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	s.chatCalls++
	s.lastReq = req
	if s.chatErr != nil {
		return "", s.chatErr
	}
	return s.chatReply, nil
}

func (s *stubProvider) Embed(ctx context.Context, input []string) ([][]float64, error) {
	vectors := make([][]float64, len(input))
	for i := range input {
		vectors[i] = []float64{1, 0}
	}
	return vectors, nil
}

func (s *stubProvider) Name() string { return "stub" }

func TestSummarizeSkipsShortText(t *testing.T) {
	provider := &stubProvider{chatReply: "should not be used"}
	p := NewProcessor(provider, DefaultOptions())
	summary, err := p.Summarize(context.Background(), "short text")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if summary != "" {
		t.Fatalf("expected empty summary for short text, got %q", summary)
	}
	if provider.chatCalls != 0 {
		t.Fatalf("expected no provider calls, got %d", provider.chatCalls)
	}
}

func TestSummarizeCallsProvider(t *testing.T) {
	provider := &stubProvider{chatReply: "  A summary.  "}
	p := NewProcessor(provider, DefaultOptions())
	text := strings.Repeat("content ", 100)
	summary, err := p.Summarize(context.Background(), text)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if summary != "A summary." {
		t.Fatalf("expected trimmed summary, got %q", summary)
	}
	if provider.chatCalls != 1 {
		t.Fatalf("expected 1 provider call, got %d", provider.chatCalls)
	}
	if provider.lastReq.Temperature != 0.3 || provider.lastReq.MaxTokens != 500 {
		t.Fatalf("unexpected request parameters: %+v", provider.lastReq)
	}
}

func TestExtractKeywordsSkipsShortText(t *testing.T) {
	provider := &stubProvider{chatReply: "a, b"}
	p := NewProcessor(provider, DefaultOptions())
	keywords, err := p.ExtractKeywords(context.Background(), "tiny")
	if err != nil {
		t.Fatalf("ExtractKeywords failed: %v", err)
	}
	if keywords != nil {
		t.Fatalf("expected no keywords for short text, got %v", keywords)
	}
	if provider.chatCalls != 0 {
		t.Fatalf("expected no provider calls, got %d", provider.chatCalls)
	}
}

func TestParseKeywords(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		want  []string
	}{
		{"plain", "go, concurrency, channels", []string{"go", "concurrency", "channels"}},
		{"labeled", "Keywords: alpha, beta", []string{"alpha", "beta"}},
		{"labeled case-insensitive", "KEYWORDS: one,two", []string{"one", "two"}},
		{"extra whitespace", "  a ,  b ,", []string{"a", "b"}},
		{"empty", "   ", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseKeywords(tc.reply)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ParseKeywords(%q) = %v, want %v", tc.reply, got, tc.want)
			}
		})
	}
}

func TestProcessDocumentProducesChunks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	text := strings.Repeat("searchable content ", 100)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	provider := &stubProvider{chatReply: "summary text"}
	p := NewProcessor(provider, DefaultOptions())
	doc, err := p.ProcessDocument(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessDocument failed: %v", err)
	}
	if !doc.Processed {
		t.Fatal("expected document to be processed")
	}
	if doc.Filename != "doc.txt" || doc.Extension != ".txt" {
		t.Fatalf("unexpected identity fields: %+v", doc)
	}
	if len(doc.Chunks) == 0 {
		t.Fatal("expected chunks")
	}
	if doc.Summary == "" {
		t.Fatal("expected a summary for text above the minimum length")
	}
}

func TestProcessDocumentUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "image.png")
	if err := os.WriteFile(path, []byte{0x89, 0x50}, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	p := NewProcessor(&stubProvider{}, DefaultOptions())
	doc, err := p.ProcessDocument(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessDocument failed: %v", err)
	}
	if doc.Processed {
		t.Fatal("expected unsupported file to remain unprocessed")
	}
}

func TestProcessBatchSkipsUnprocessed(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.md")
	bad := filepath.Join(dir, "bad.bin")
	if err := os.WriteFile(good, []byte(strings.Repeat("text ", 200)), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := os.WriteFile(bad, []byte{0x00}, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	p := NewProcessor(&stubProvider{chatReply: "ok"}, DefaultOptions())
	var calls int
	docs, err := p.ProcessBatch(context.Background(), []string{good, bad}, func(done, total int, name string) {
		calls++
		if total != 2 {
			t.Fatalf("expected total 2, got %d", total)
		}
	})
	if err != nil {
		t.Fatalf("ProcessBatch failed: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 processed document, got %d", len(docs))
	}
	if calls != 2 {
		t.Fatalf("expected progress for every file, got %d calls", calls)
	}
}
