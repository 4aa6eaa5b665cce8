// File path: internal/grader/templates.go
package grader

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quillon/docchat/internal/common"
)

// Template is a reusable grading configuration stored one JSON file per
// template.
type Template struct {
	Name            string            `json:"name"`
	Criteria        map[string]string `json:"criteria"`
	ReferenceAnswer string            `json:"reference_answer,omitempty"`
	Context         string            `json:"context,omitempty"`
}

// TemplateStore persists grading templates under a directory.
type TemplateStore struct {
	dir string
}

func NewTemplateStore(dir string) (*TemplateStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("template store directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create template dir: %w", err)
	}
	return &TemplateStore{dir: dir}, nil
}

// Save writes a template keyed by its name.
func (s *TemplateStore) Save(tpl Template) error {
	if strings.TrimSpace(tpl.Name) == "" {
		return errors.New("template name required")
	}
	payload, err := json.MarshalIndent(tpl, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal template %s: %w", tpl.Name, err)
	}
	path := filepath.Join(s.dir, tpl.Name+".json")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write template %s: %w", tpl.Name, err)
	}
	return nil
}

// LoadAll reads every template in the directory, keyed by file stem.
// Malformed files are skipped with a warning.
func (s *TemplateStore) LoadAll() (map[string]Template, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]Template{}, nil
		}
		return nil, fmt.Errorf("read template dir: %w", err)
	}
	logger := common.Logger()
	templates := make(map[string]Template)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			logger.Warn("grader: skipping unreadable template", "file", entry.Name(), "error", err)
			continue
		}
		var tpl Template
		if err := json.Unmarshal(data, &tpl); err != nil {
			logger.Warn("grader: skipping malformed template", "file", entry.Name(), "error", err)
			continue
		}
		templates[strings.TrimSuffix(entry.Name(), ".json")] = tpl
	}
	return templates, nil
}
