// File path: internal/config/config_test.go
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWritesDefaultsWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docchat.json")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ChatModel != "gpt-4o" || cfg.EmbedModel != "text-embedding-3-small" {
		t.Fatalf("unexpected model defaults: %+v", cfg)
	}
	if cfg.ChunkSizes != [2]int{1000, 500} || cfg.Overlaps != [2]int{100, 50} {
		t.Fatalf("unexpected chunk defaults: %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("defaults file not written: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read written config: %v", err)
	}
	var onDisk Config
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatalf("written config is not valid JSON: %v", err)
	}
	if onDisk.ChatModel != cfg.ChatModel {
		t.Fatalf("written config differs: %+v", onDisk)
	}
}

func TestLoadMergesFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docchat.json")
	payload := []byte(`{"model": "gpt-4o-mini", "temperature": 0.2, "chunk_sizes": [800, 400], "overlaps": [80, 40]}`)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ChatModel != "gpt-4o-mini" {
		t.Fatalf("file override lost: %q", cfg.ChatModel)
	}
	if cfg.Temperature != 0.2 {
		t.Fatalf("temperature = %v, want 0.2", cfg.Temperature)
	}
	if cfg.ChunkSizes != [2]int{800, 400} {
		t.Fatalf("chunk sizes = %v", cfg.ChunkSizes)
	}
	// Untouched fields keep their defaults.
	if cfg.EmbedModel != "text-embedding-3-small" || cfg.MaxTokens != 1024 {
		t.Fatalf("defaults clobbered: %+v", cfg)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docchat.json")
	if err := os.WriteFile(path, []byte(`{"model": "from-file"}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DOCCHAT_CHAT_MODEL", "from-env")
	t.Setenv("DOCCHAT_MAX_TOKENS", "2048")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ChatModel != "from-env" {
		t.Fatalf("env override lost: %q", cfg.ChatModel)
	}
	if cfg.MaxTokens != 2048 {
		t.Fatalf("max tokens = %d, want 2048", cfg.MaxTokens)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docchat.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestMergeIgnoresZeroValues(t *testing.T) {
	base := defaults()
	merged := base.Merge(Config{})
	if merged != base {
		t.Fatalf("merging a zero config changed values: %+v", merged)
	}
	merged = base.Merge(Config{Temperature: 0.5, SessionDB: "other.db"})
	if merged.Temperature != 0.5 || merged.SessionDB != "other.db" {
		t.Fatalf("override lost: %+v", merged)
	}
	if merged.ChatModel != base.ChatModel {
		t.Fatalf("unrelated field changed: %+v", merged)
	}
}
