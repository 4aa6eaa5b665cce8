// File path: internal/index/persist.go
package index

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quillon/docchat/internal/common"
)

// snapshot is the serialized form of the index blob.
type snapshot struct {
	Documents    []string
	Embeddings   [][]float64
	IDToPath     map[int]string
	IDToMetadata map[int]Metadata
	Summaries    map[string]string
	Keywords     map[string][]string
	Initialized  bool
}

type summarySidecar struct {
	DocumentCount int      `json:"document_count"`
	FileCount     int      `json:"file_count"`
	HasSummaries  bool     `json:"has_summaries"`
	HasKeywords   bool     `json:"has_keywords"`
	Files         []string `json:"files"`
}

// Save serializes the full index atomically to the blob path and writes the
// human-readable summary sidecar. Failures leave any previous blob in place.
func (s *Store) Save() error {
	s.mu.RLock()
	snap := snapshot{
		Documents:    s.documents,
		Embeddings:   s.embeddings,
		IDToPath:     s.idToPath,
		IDToMetadata: s.idToMetadata,
		Summaries:    s.summaries,
		Keywords:     s.keywords,
		Initialized:  s.initialized,
	}
	path := s.path
	summaryPath := s.summaryPath
	s.mu.RUnlock()

	if path == "" {
		return errors.New("index: no blob path configured")
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create index dir: %w", err)
		}
	}
	tempPath := path + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create index blob: %w", err)
	}
	if err := gob.NewEncoder(file).Encode(snap); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("encode index: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("close index blob: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("finalize index blob: %w", err)
	}

	if summaryPath != "" {
		files := uniquePaths(snap.IDToMetadata, snap.IDToPath)
		sidecar := summarySidecar{
			DocumentCount: len(snap.Documents),
			FileCount:     len(files),
			HasSummaries:  len(snap.Summaries) > 0,
			HasKeywords:   len(snap.Keywords) > 0,
			Files:         files,
		}
		payload, err := json.MarshalIndent(sidecar, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal index summary: %w", err)
		}
		if err := os.WriteFile(summaryPath, payload, 0o644); err != nil {
			return fmt.Errorf("write index summary: %w", err)
		}
	}
	common.Logger().Info("index: persisted", "path", path, "chunks", len(snap.Documents))
	return nil
}

// Load restores the index from the blob, merging it into the resident
// store. A missing blob is not an error; Load reports false.
func (s *Store) Load() (bool, error) {
	s.mu.RLock()
	path := s.path
	s.mu.RUnlock()
	if path == "" {
		return false, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("open index blob: %w", err)
	}
	defer file.Close()
	var snap snapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return false, fmt.Errorf("decode index: %w", err)
	}
	s.mu.Lock()
	s.documents = snap.Documents
	s.embeddings = snap.Embeddings
	s.idToPath = snap.IDToPath
	s.idToMetadata = snap.IDToMetadata
	s.summaries = snap.Summaries
	s.keywords = snap.Keywords
	s.initialized = snap.Initialized
	s.mu.Unlock()
	common.Logger().Info("index: loaded from disk", "path", path, "chunks", len(snap.Documents))
	return true, nil
}
