// File path: internal/index/index.go
package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/quillon/docchat/internal/common"
	"github.com/quillon/docchat/internal/docs"
)

// ErrNoIndex signals that no index is resident and none could be loaded from
// disk. Callers treat it as "retrieval unavailable", not a failure.
var ErrNoIndex = errors.New("index: not initialized")

// ErrNoDocuments signals that a build found nothing to index. The prior
// index, in memory and on disk, is left untouched.
var ErrNoDocuments = errors.New("index: no indexable documents")

const defaultBatchSize = 10

// Embedder is the narrow contract the index needs from the embedding
// service: one vector per input text, in input order.
type Embedder interface {
	Embed(ctx context.Context, input []string) ([][]float64, error)
}

// Metadata describes one indexed chunk. Path is the source document; for
// hierarchically chunked documents Chunked is true and ChunkLevel/ChunkIndex
// locate the chunk within the document.
type Metadata struct {
	Path        string `json:"path"`
	Filename    string `json:"filename"`
	ChunkLevel  int    `json:"chunk_level"`
	ChunkIndex  int    `json:"chunk_index"`
	ParentIndex int    `json:"parent_index"`
	Chunked     bool   `json:"chunked"`
}

// Store is the in-memory vector index plus its side tables. All state is
// guarded by a single RWMutex; a build stages everything off-lock and
// commits atomically, so a failed build never corrupts a resident index.
type Store struct {
	mu sync.RWMutex

	path        string
	summaryPath string
	embedder    Embedder
	batchSize   int

	documents    []string
	embeddings   [][]float64
	idToPath     map[int]string
	idToMetadata map[int]Metadata
	summaries    map[string]string
	keywords     map[string][]string
	initialized  bool
}

// New constructs an empty index store persisting to path, with a JSON
// summary sidecar at summaryPath.
func New(path, summaryPath string, embedder Embedder, batchSize int) *Store {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Store{
		path:        path,
		summaryPath: summaryPath,
		embedder:    embedder,
		batchSize:   batchSize,
	}
}

// Initialized reports whether an index is resident in memory.
func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Build replaces the resident index with one built from the processed
// documents. Chunks are flattened across documents in order, embedded in
// fixed-size batches, and the whole structure is committed only after every
// batch succeeds. The previous index survives any mid-build failure.
func (s *Store) Build(ctx context.Context, documents []docs.Document) error {
	logger := common.Logger()

	var texts []string
	var chunkIDs []string
	metadata := make(map[string]Metadata)
	summaries := make(map[string]string)
	keywords := make(map[string][]string)

	for _, doc := range documents {
		if len(doc.Chunks) > 0 {
			for i, chunk := range doc.Chunks {
				chunkID := fmt.Sprintf("%s:%d", doc.Path, i)
				texts = append(texts, chunk.Text)
				chunkIDs = append(chunkIDs, chunkID)
				metadata[chunkID] = Metadata{
					Path:        doc.Path,
					Filename:    doc.Filename,
					ChunkLevel:  chunk.Level,
					ChunkIndex:  chunk.Index,
					ParentIndex: chunk.ParentIndex,
					Chunked:     true,
				}
			}
		} else if strings.TrimSpace(doc.Text) != "" {
			// No chunks were produced; index the whole text as one entry.
			texts = append(texts, doc.Text)
			chunkIDs = append(chunkIDs, doc.Path)
			metadata[doc.Path] = Metadata{Path: doc.Path, Filename: doc.Filename, ParentIndex: -1}
		} else {
			continue
		}
		if doc.Summary != "" {
			summaries[doc.Path] = doc.Summary
		}
		if len(doc.Keywords) > 0 {
			keywords[doc.Path] = doc.Keywords
		}
	}
	if len(texts) == 0 {
		logger.Warn("index: no content to index; keeping previous index")
		return ErrNoDocuments
	}
	if s.embedder == nil {
		return errors.New("index: no embedder configured")
	}

	embeddings := make([][]float64, 0, len(texts))
	batches := (len(texts) + s.batchSize - 1) / s.batchSize
	for i := 0; i < len(texts); i += s.batchSize {
		end := i + s.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		logger.Info("index: embedding batch", "batch", i/s.batchSize+1, "batches", batches)
		vectors, err := s.embedder.Embed(ctx, texts[i:end])
		if err != nil {
			return fmt.Errorf("embed batch %d: %w", i/s.batchSize+1, err)
		}
		if len(vectors) != end-i {
			return fmt.Errorf("embed batch %d: sent %d texts, got %d vectors", i/s.batchSize+1, end-i, len(vectors))
		}
		embeddings = append(embeddings, vectors...)
	}

	idToPath := make(map[int]string, len(chunkIDs))
	idToMetadata := make(map[int]Metadata, len(chunkIDs))
	for i, chunkID := range chunkIDs {
		idToPath[i] = chunkID
		idToMetadata[i] = metadata[chunkID]
	}

	s.mu.Lock()
	s.documents = texts
	s.embeddings = embeddings
	s.idToPath = idToPath
	s.idToMetadata = idToMetadata
	s.summaries = summaries
	s.keywords = keywords
	s.initialized = true
	s.mu.Unlock()

	logger.Info("index: build complete", "chunks", len(texts), "files", len(uniquePaths(idToMetadata, idToPath)))
	if err := s.Save(); err != nil {
		logger.Error("index: failed to persist index", "error", err)
		return fmt.Errorf("persist index: %w", err)
	}
	return nil
}

// Search embeds the query, ranks every stored chunk by cosine similarity,
// and renders the top k as a human-readable context string. Returns
// ErrNoIndex when nothing is resident and nothing could be loaded.
func (s *Store) Search(ctx context.Context, query string, topK int, includeMetadata bool) (string, error) {
	if !s.Initialized() {
		loaded, err := s.Load()
		if err != nil {
			return "", fmt.Errorf("load index: %w", err)
		}
		if !loaded {
			return "", ErrNoIndex
		}
	}
	if topK <= 0 {
		topK = 3
	}
	if s.embedder == nil {
		return "", errors.New("index: no embedder configured")
	}
	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return "", fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return "", fmt.Errorf("embed query: expected 1 vector, got %d", len(vectors))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	ranked := TopK(CosineSimilarities(vectors[0], s.embeddings), topK)

	var blocks []string
	for _, idx := range ranked {
		chunkID := s.idToPath[idx]
		basePath := basePathOf(chunkID)
		md, hasMD := s.idToMetadata[idx]

		entry := "From " + filepath.Base(basePath)
		if includeMetadata && hasMD && md.Chunked {
			entry += fmt.Sprintf(" (Section %d)", md.ChunkIndex)
		}
		entry += ":\n"
		if summary, ok := s.summaries[basePath]; ok && summary != "" {
			entry += fmt.Sprintf("\nSUMMARY: %s\n", summary)
		}
		if kws, ok := s.keywords[basePath]; ok && len(kws) > 0 {
			entry += fmt.Sprintf("\nKEYWORDS: %s\n", strings.Join(kws, ", "))
		}
		entry += fmt.Sprintf("\nCONTENT: %s\n", s.documents[idx])
		blocks = append(blocks, entry)
	}
	return strings.Join(blocks, "\n"), nil
}

// CosineSimilarities computes the cosine similarity of query against every
// row. A zero-norm row (or query) yields similarity 0, never NaN.
func CosineSimilarities(query []float64, rows [][]float64) []float64 {
	similarities := make([]float64, len(rows))
	queryNorm := vectorNorm(query)
	if queryNorm == 0 {
		return similarities
	}
	for i, row := range rows {
		rowNorm := vectorNorm(row)
		if rowNorm == 0 {
			continue
		}
		var dot float64
		n := len(row)
		if len(query) < n {
			n = len(query)
		}
		for j := 0; j < n; j++ {
			dot += row[j] * query[j]
		}
		similarities[i] = dot / (rowNorm * queryNorm)
	}
	return similarities
}

// TopK returns the indices of the k highest similarities in descending
// order. Ties keep insertion order, lowest index first.
func TopK(similarities []float64, k int) []int {
	indices := make([]int, len(similarities))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return similarities[indices[a]] > similarities[indices[b]]
	})
	if k > len(indices) {
		k = len(indices)
	}
	return indices[:k]
}

func vectorNorm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// basePathOf strips the ":position" suffix from a chunk id to recover the
// source document path.
func basePathOf(chunkID string) string {
	if idx := strings.LastIndex(chunkID, ":"); idx > 0 {
		// Only strip when the suffix is numeric, so paths containing a
		// colon survive intact.
		numeric := chunkID[idx+1:] != ""
		for _, r := range chunkID[idx+1:] {
			if r < '0' || r > '9' {
				numeric = false
				break
			}
		}
		if numeric {
			return chunkID[:idx]
		}
	}
	return chunkID
}

// Stats summarizes the resident index for inspection endpoints.
type Stats struct {
	DocumentCount int      `json:"document_count"`
	FileCount     int      `json:"file_count"`
	Files         []string `json:"files"`
	AvgChunkSize  float64  `json:"avg_chunk_size"`
	HasSummaries  bool     `json:"has_summaries"`
	HasKeywords   bool     `json:"has_keywords"`
	SummaryCount  int      `json:"summary_count"`
	KeywordCount  int      `json:"keyword_count"`
}

// Stats reports index statistics, loading from disk first if needed.
func (s *Store) Stats() (*Stats, error) {
	if !s.Initialized() {
		loaded, err := s.Load()
		if err != nil {
			return nil, fmt.Errorf("load index: %w", err)
		}
		if !loaded {
			return nil, ErrNoIndex
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	files := uniquePaths(s.idToMetadata, s.idToPath)
	var totalSize int
	for _, doc := range s.documents {
		totalSize += len(doc)
	}
	avg := 0.0
	if len(s.documents) > 0 {
		avg = float64(totalSize) / float64(len(s.documents))
	}
	return &Stats{
		DocumentCount: len(s.documents),
		FileCount:     len(files),
		Files:         files,
		AvgChunkSize:  avg,
		HasSummaries:  len(s.summaries) > 0,
		HasKeywords:   len(s.keywords) > 0,
		SummaryCount:  len(s.summaries),
		KeywordCount:  len(s.keywords),
	}, nil
}

func uniquePaths(idToMetadata map[int]Metadata, idToPath map[int]string) []string {
	seen := make(map[string]struct{})
	for id, chunkID := range idToPath {
		path := basePathOf(chunkID)
		if md, ok := idToMetadata[id]; ok && md.Path != "" {
			path = md.Path
		}
		seen[path] = struct{}{}
	}
	paths := make([]string, 0, len(seen))
	for path := range seen {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
