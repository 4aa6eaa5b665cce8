// File path: internal/flow/store_test.go
package flow

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	f := twoStageFlow()
	if err := store.Save(f); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := store.Load("support")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.FlowID != f.FlowID || loaded.InitialStage != f.InitialStage {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
	if len(loaded.Stages) != len(f.Stages) {
		t.Fatalf("expected %d stages, got %d", len(f.Stages), len(loaded.Stages))
	}
	stage, ok := loaded.GetStage("greeting")
	if !ok {
		t.Fatal("greeting stage missing after round trip")
	}
	if stage.MaxTurns != 2 || stage.CompletionCriteria["greeted"] == "" {
		t.Fatalf("stage fields lost: %+v", stage)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if _, err := store.Load("ghost"); !errors.Is(err, ErrFlowNotFound) {
		t.Fatalf("expected ErrFlowNotFound, got %v", err)
	}
}

func TestStoreListSkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if err := store.Save(twoStageFlow()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write broken file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatalf("write text file: %v", err)
	}
	infos, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(infos) != 1 || infos[0].FlowID != "support" {
		t.Fatalf("unexpected listing: %+v", infos)
	}
}

func TestSeedDefaults(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if err := store.SeedDefaults(); err != nil {
		t.Fatalf("SeedDefaults failed: %v", err)
	}
	infos, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 default flows, got %d", len(infos))
	}
	for _, info := range infos {
		f, err := store.Load(info.FlowID)
		if err != nil {
			t.Fatalf("Load %s failed: %v", info.FlowID, err)
		}
		if issues := Validate(f); len(issues) > 0 {
			t.Fatalf("default flow %s has validation issues: %v", info.FlowID, issues)
		}
	}
}

func TestSeedDefaultsDoesNotOverwrite(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	custom := twoStageFlow()
	if err := store.Save(custom); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.SeedDefaults(); err != nil {
		t.Fatalf("SeedDefaults failed: %v", err)
	}
	infos, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(infos) != 1 || infos[0].FlowID != "support" {
		t.Fatalf("seeding should be a no-op on a populated store: %+v", infos)
	}
}

func TestValidateReportsGraphDefects(t *testing.T) {
	f := &Flow{
		FlowID:       "bad",
		InitialStage: "start",
		Stages: map[string]Stage{
			"start": {
				StageID:    "start",
				NextStages: []string{"missing"},
				MaxTurns:   1,
			},
			"island": {
				StageID:  "island",
				MaxTurns: 0,
			},
		},
	}
	issues := Validate(f)
	assertIssue := func(substr string) {
		t.Helper()
		for _, issue := range issues {
			if strings.Contains(issue, substr) {
				return
			}
		}
		t.Fatalf("expected issue containing %q, got %v", substr, issues)
	}
	assertIssue(`references nonexistent stage "missing"`)
	assertIssue(`"island" has max_turns < 1`)
	assertIssue(`"island" is unreachable`)
}

func TestValidateCleanFlow(t *testing.T) {
	if issues := Validate(twoStageFlow()); len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}
}

func TestValidateUnknownInitialStage(t *testing.T) {
	f := &Flow{FlowID: "x", InitialStage: "nope", Stages: map[string]Stage{
		"a": {StageID: "a", MaxTurns: 1},
	}}
	issues := Validate(f)
	if len(issues) == 0 || !strings.Contains(issues[0], `initial_stage "nope"`) {
		t.Fatalf("expected unknown initial stage issue, got %v", issues)
	}
}
