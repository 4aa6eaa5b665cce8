// File path: internal/api/index_handler.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/quillon/docchat/internal/common"
	"github.com/quillon/docchat/internal/docs"
	"github.com/quillon/docchat/internal/index"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	ctx := r.Context()
	var req indexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Directory) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("directory required"))
		return
	}
	if s.processor == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("document processor unavailable"))
		return
	}
	paths, err := docs.ListFiles(req.Directory)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	logger.Info("api: indexing directory", "directory", req.Directory, "files", len(paths))
	documents, err := s.processor.ProcessBatch(ctx, paths, func(done, total int, name string) {
		logger.Debug("api: indexing progress", "done", done, "total", total, "file", name)
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := s.index.Build(ctx, documents); err != nil {
		if errors.Is(err, index.ErrNoDocuments) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	var skipped []string
	processedPaths := make(map[string]struct{}, len(documents))
	for _, doc := range documents {
		processedPaths[doc.Path] = struct{}{}
	}
	for _, path := range paths {
		if _, ok := processedPaths[path]; !ok {
			skipped = append(skipped, path)
		}
	}
	writeJSON(w, http.StatusOK, indexResponse{
		Indexed:   len(paths) - len(skipped),
		Documents: len(documents),
		Skipped:   skipped,
	})
}

func (s *Server) handleIndexStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.index.Stats()
	if err != nil {
		if errors.Is(err, index.ErrNoIndex) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("q query parameter required"))
		return
	}
	topK := s.apiCfg.TopK
	if raw := r.URL.Query().Get("top_k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid top_k: %q", raw))
			return
		}
		topK = parsed
	}
	includeMetadata := r.URL.Query().Get("metadata") != "false"
	result, err := s.index.Search(ctx, query, topK, includeMetadata)
	if err != nil {
		if errors.Is(err, index.ErrNoIndex) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Query: query, Context: result})
}
