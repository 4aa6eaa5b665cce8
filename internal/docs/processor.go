// File path: internal/docs/processor.go
package docs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quillon/docchat/internal/common"
	"github.com/quillon/docchat/internal/llm"
)

const (
	summaryTextLimit = 6000
	keywordTextLimit = 4000

	enrichTemperature = 0.3
	summaryMaxTokens  = 500
	keywordMaxTokens  = 100
)

// Document is the fully processed form of one source file: extracted text,
// optional summary and keywords, and hierarchical chunks ready for
// embedding. Processed is false when no text could be extracted.
type Document struct {
	Path      string   `json:"path"`
	Filename  string   `json:"filename"`
	Extension string   `json:"extension"`
	Size      int64    `json:"size"`
	Text      string   `json:"-"`
	Summary   string   `json:"summary,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
	Chunks    []Chunk  `json:"chunks,omitempty"`
	Processed bool     `json:"processed"`
}

// Options bounds the enrichment and chunking behavior of a Processor.
type Options struct {
	MinSummaryLen int
	MinKeywordLen int
	ChunkSizes    [2]int
	Overlaps      [2]int
}

// DefaultOptions mirrors the stock configuration.
func DefaultOptions() Options {
	return Options{
		MinSummaryLen: 500,
		MinKeywordLen: 200,
		ChunkSizes:    [2]int{1000, 500},
		Overlaps:      [2]int{100, 50},
	}
}

// Processor turns source files into enriched, chunked Documents. Summary and
// keyword generation go through the completion provider and degrade to empty
// results on failure; chunking always runs.
type Processor struct {
	provider llm.Provider
	opts     Options
}

func NewProcessor(provider llm.Provider, opts Options) *Processor {
	if opts.MinSummaryLen <= 0 {
		opts.MinSummaryLen = DefaultOptions().MinSummaryLen
	}
	if opts.MinKeywordLen <= 0 {
		opts.MinKeywordLen = DefaultOptions().MinKeywordLen
	}
	if opts.ChunkSizes[0] <= 0 || opts.ChunkSizes[1] <= 0 {
		opts.ChunkSizes = DefaultOptions().ChunkSizes
		opts.Overlaps = DefaultOptions().Overlaps
	}
	return &Processor{provider: provider, opts: opts}
}

// ProcessDocument extracts, enriches, and chunks a single file. Extraction
// and enrichment failures are logged and leave the corresponding fields
// empty; only chunker misconfiguration is returned as an error.
func (p *Processor) ProcessDocument(ctx context.Context, path string) (Document, error) {
	logger := common.Logger()
	doc := Document{
		Path:      path,
		Filename:  filepath.Base(path),
		Extension: strings.ToLower(filepath.Ext(path)),
	}
	if info, err := os.Stat(path); err == nil {
		doc.Size = info.Size()
	}
	text, err := ExtractText(path)
	if err != nil {
		if errors.Is(err, ErrUnsupported) {
			logger.Warn("docs: unsupported file type", "path", path)
		} else {
			logger.Warn("docs: text extraction failed", "path", path, "error", err)
		}
		return doc, nil
	}
	if strings.TrimSpace(text) == "" {
		logger.Warn("docs: no text extracted", "path", path)
		return doc, nil
	}
	doc.Text = text

	if summary, err := p.Summarize(ctx, text); err != nil {
		logger.Warn("docs: summarization failed", "path", path, "error", err)
	} else {
		doc.Summary = summary
	}
	if keywords, err := p.ExtractKeywords(ctx, text); err != nil {
		logger.Warn("docs: keyword extraction failed", "path", path, "error", err)
	} else {
		doc.Keywords = keywords
	}

	chunks, err := HierarchicalChunks(text, p.opts.ChunkSizes, p.opts.Overlaps)
	if err != nil {
		return doc, fmt.Errorf("chunk %s: %w", path, err)
	}
	doc.Chunks = chunks
	doc.Processed = true
	logger.Info("docs: processed document", "path", path, "chunks", len(chunks), "summary", doc.Summary != "", "keywords", len(doc.Keywords))
	return doc, nil
}

// Progress reports batch progress after each file.
type Progress func(done, total int, name string)

// ProcessBatch processes paths sequentially, skipping files that yield no
// text. The optional progress callback fires after each file.
func (p *Processor) ProcessBatch(ctx context.Context, paths []string, progress Progress) ([]Document, error) {
	var processed []Document
	for i, path := range paths {
		select {
		case <-ctx.Done():
			return processed, ctx.Err()
		default:
		}
		doc, err := p.ProcessDocument(ctx, path)
		if err != nil {
			return processed, err
		}
		if doc.Processed {
			processed = append(processed, doc)
		}
		if progress != nil {
			progress(i+1, len(paths), doc.Filename)
		}
	}
	return processed, nil
}

// Summarize asks the provider for a prose summary. Texts shorter than the
// configured minimum are not worth a remote call and yield an empty summary.
func (p *Processor) Summarize(ctx context.Context, text string) (string, error) {
	if len(text) < p.opts.MinSummaryLen {
		return "", nil
	}
	if p.provider == nil {
		return "", errors.New("no completion provider configured")
	}
	reply, err := p.provider.Chat(ctx, llm.ChatRequest{
		Messages:    []llm.Message{{Role: "user", Content: fmt.Sprintf(summaryPrompt, truncate(text, summaryTextLimit))}},
		Temperature: enrichTemperature,
		MaxTokens:   summaryMaxTokens,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// ExtractKeywords asks the provider for a comma-separated keyword list and
// parses the constrained reply. A leading "Keywords:" label is tolerated.
func (p *Processor) ExtractKeywords(ctx context.Context, text string) ([]string, error) {
	if len(text) < p.opts.MinKeywordLen {
		return nil, nil
	}
	if p.provider == nil {
		return nil, errors.New("no completion provider configured")
	}
	reply, err := p.provider.Chat(ctx, llm.ChatRequest{
		Messages:    []llm.Message{{Role: "user", Content: fmt.Sprintf(keywordPrompt, truncate(text, keywordTextLimit))}},
		Temperature: enrichTemperature,
		MaxTokens:   keywordMaxTokens,
	})
	if err != nil {
		return nil, err
	}
	return ParseKeywords(reply), nil
}

// ParseKeywords splits a comma-separated keyword reply, trimming whitespace
// and stripping an optional leading label.
func ParseKeywords(reply string) []string {
	trimmed := strings.TrimSpace(reply)
	if rest, ok := cutPrefixFold(trimmed, "keywords:"); ok {
		trimmed = strings.TrimSpace(rest)
	}
	if trimmed == "" {
		return nil
	}
	var keywords []string
	for _, part := range strings.Split(trimmed, ",") {
		if kw := strings.TrimSpace(part); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return s, false
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
