// File path: internal/flow/store.go
package flow

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/quillon/docchat/internal/common"
)

// ErrFlowNotFound reports a missing flow definition file.
var ErrFlowNotFound = errors.New("flow: not found")

// FlowInfo is the listing entry for a stored flow.
type FlowInfo struct {
	FlowID      string `json:"flow_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Store persists flow definitions one JSON file per flow under a directory.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("flow store directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create flow dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes a flow definition, replacing any previous version. Flows with
// graph defects are still saved; validation issues are logged as warnings
// so authors can iterate on partial graphs.
func (s *Store) Save(f *Flow) error {
	if f == nil || strings.TrimSpace(f.FlowID) == "" {
		return errors.New("flow id required")
	}
	for _, issue := range Validate(f) {
		common.Logger().Warn("flow: validation issue", "flow", f.FlowID, "issue", issue)
	}
	payload, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal flow %s: %w", f.FlowID, err)
	}
	path := s.flowPath(f.FlowID)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write flow %s: %w", f.FlowID, err)
	}
	return nil
}

// Load reads one flow definition by id.
func (s *Store) Load(flowID string) (*Flow, error) {
	data, err := os.ReadFile(s.flowPath(flowID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFlowNotFound, flowID)
		}
		return nil, fmt.Errorf("read flow %s: %w", flowID, err)
	}
	var f Flow
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse flow %s: %w", flowID, err)
	}
	for _, issue := range Validate(&f) {
		common.Logger().Warn("flow: validation issue", "flow", f.FlowID, "issue", issue)
	}
	return &f, nil
}

// List enumerates stored flows, sorted by id. Unreadable files are skipped
// with a warning.
func (s *Store) List() ([]FlowInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read flow dir: %w", err)
	}
	logger := common.Logger()
	var infos []FlowInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			logger.Warn("flow: skipping unreadable flow file", "file", entry.Name(), "error", err)
			continue
		}
		var f Flow
		if err := json.Unmarshal(data, &f); err != nil {
			logger.Warn("flow: skipping malformed flow file", "file", entry.Name(), "error", err)
			continue
		}
		infos = append(infos, FlowInfo{FlowID: f.FlowID, Name: f.Name, Description: f.Description})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].FlowID < infos[j].FlowID })
	return infos, nil
}

// SeedDefaults writes the built-in flows when the store is empty.
func (s *Store) SeedDefaults() error {
	infos, err := s.List()
	if err != nil {
		return err
	}
	if len(infos) > 0 {
		return nil
	}
	for _, f := range DefaultFlows() {
		if err := s.Save(f); err != nil {
			return err
		}
	}
	common.Logger().Info("flow: seeded default flows", "dir", s.dir)
	return nil
}

func (s *Store) flowPath(flowID string) string {
	return filepath.Join(s.dir, flowID+".json")
}

// Validate checks a flow graph for data-quality defects: a missing or
// unknown initial stage, next_stages references to nonexistent stages, and
// stages unreachable from the initial stage. Issues are reported, not
// fatal; traversal of a dangling reference still fails lazily at runtime.
func Validate(f *Flow) []string {
	var issues []string
	if f.InitialStage == "" {
		issues = append(issues, "initial_stage is empty")
	} else if _, ok := f.Stages[f.InitialStage]; !ok {
		issues = append(issues, fmt.Sprintf("initial_stage %q does not exist", f.InitialStage))
	}
	ids := make([]string, 0, len(f.Stages))
	for id := range f.Stages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		for _, next := range f.Stages[id].NextStages {
			if _, ok := f.Stages[next]; !ok {
				issues = append(issues, fmt.Sprintf("stage %q references nonexistent stage %q", id, next))
			}
		}
		if f.Stages[id].MaxTurns < 1 {
			issues = append(issues, fmt.Sprintf("stage %q has max_turns < 1", id))
		}
	}
	if _, ok := f.Stages[f.InitialStage]; ok {
		reachable := map[string]bool{f.InitialStage: true}
		queue := []string{f.InitialStage}
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			for _, next := range f.Stages[id].NextStages {
				if _, exists := f.Stages[next]; exists && !reachable[next] {
					reachable[next] = true
					queue = append(queue, next)
				}
			}
		}
		for _, id := range ids {
			if !reachable[id] {
				issues = append(issues, fmt.Sprintf("stage %q is unreachable from the initial stage", id))
			}
		}
	}
	return issues
}
