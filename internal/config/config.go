// File path: internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config carries every tunable the assistant reads at startup. Values are
// resolved in order: built-in defaults, then the JSON config file, then
// environment overrides.
type Config struct {
	ChatModel      string  `json:"model"`
	EmbedModel     string  `json:"embedding_model"`
	Temperature    float64 `json:"temperature"`
	MaxTokens      int     `json:"max_tokens"`
	SystemPrompt   string  `json:"system_prompt"`
	MaxHistory     int     `json:"max_history_length"`
	MinSummaryLen  int     `json:"min_summary_length"`
	MinKeywordLen  int     `json:"min_keyword_length"`
	EmbedBatchSize int     `json:"embed_batch_size"`

	ChunkSizes [2]int `json:"chunk_sizes"`
	Overlaps   [2]int `json:"overlaps"`

	IndexPath    string `json:"index_path"`
	SummaryPath  string `json:"index_summary_path"`
	FlowsDir     string `json:"flows_dir"`
	TemplatesDir string `json:"grading_templates_dir"`
	SessionDB    string `json:"session_db"`
}

// Merge overlays the non-zero fields of override onto the receiver.
func (c Config) Merge(override Config) Config {
	result := c
	if strings.TrimSpace(override.ChatModel) != "" {
		result.ChatModel = strings.TrimSpace(override.ChatModel)
	}
	if strings.TrimSpace(override.EmbedModel) != "" {
		result.EmbedModel = strings.TrimSpace(override.EmbedModel)
	}
	if override.Temperature > 0 {
		result.Temperature = override.Temperature
	}
	if override.MaxTokens > 0 {
		result.MaxTokens = override.MaxTokens
	}
	if strings.TrimSpace(override.SystemPrompt) != "" {
		result.SystemPrompt = override.SystemPrompt
	}
	if override.MaxHistory > 0 {
		result.MaxHistory = override.MaxHistory
	}
	if override.MinSummaryLen > 0 {
		result.MinSummaryLen = override.MinSummaryLen
	}
	if override.MinKeywordLen > 0 {
		result.MinKeywordLen = override.MinKeywordLen
	}
	if override.EmbedBatchSize > 0 {
		result.EmbedBatchSize = override.EmbedBatchSize
	}
	if override.ChunkSizes[0] > 0 && override.ChunkSizes[1] > 0 {
		result.ChunkSizes = override.ChunkSizes
	}
	if override.Overlaps[0] > 0 || override.Overlaps[1] > 0 {
		result.Overlaps = override.Overlaps
	}
	if strings.TrimSpace(override.IndexPath) != "" {
		result.IndexPath = strings.TrimSpace(override.IndexPath)
	}
	if strings.TrimSpace(override.SummaryPath) != "" {
		result.SummaryPath = strings.TrimSpace(override.SummaryPath)
	}
	if strings.TrimSpace(override.FlowsDir) != "" {
		result.FlowsDir = strings.TrimSpace(override.FlowsDir)
	}
	if strings.TrimSpace(override.TemplatesDir) != "" {
		result.TemplatesDir = strings.TrimSpace(override.TemplatesDir)
	}
	if strings.TrimSpace(override.SessionDB) != "" {
		result.SessionDB = strings.TrimSpace(override.SessionDB)
	}
	return result
}

// Load resolves the effective configuration. When the config file does not
// exist it is created with the defaults so operators have something to edit.
func Load(path string) (Config, error) {
	cfg := defaults()
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		trimmed = "config.json"
	}
	fileCfg, found, err := loadFile(trimmed)
	if err != nil {
		return Config{}, err
	}
	if found {
		cfg = cfg.Merge(fileCfg)
	} else if err := writeFile(trimmed, cfg); err != nil {
		return Config{}, err
	}
	cfg = cfg.Merge(loadEnv())
	return cfg, nil
}

func defaults() Config {
	return Config{
		ChatModel:      "gpt-4o",
		EmbedModel:     "text-embedding-3-small",
		Temperature:    0.7,
		MaxTokens:      1024,
		SystemPrompt:   "You are a helpful assistant that provides accurate and concise information.",
		MaxHistory:     10,
		MinSummaryLen:  500,
		MinKeywordLen:  200,
		EmbedBatchSize: 10,
		ChunkSizes:     [2]int{1000, 500},
		Overlaps:       [2]int{100, 50},
		IndexPath:      "index.gob",
		SummaryPath:    "index_summary.json",
		FlowsDir:       "conversation_flows",
		TemplatesDir:   "grading_templates",
		SessionDB:      "sessions.db",
	}
}

func loadFile(path string) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, false, nil
		}
		return Config{}, false, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, false, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, true, nil
}

func writeFile(path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	payload, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

func loadEnv() Config {
	var cfg Config
	cfg.ChatModel = os.Getenv("DOCCHAT_CHAT_MODEL")
	cfg.EmbedModel = os.Getenv("DOCCHAT_EMBED_MODEL")
	if raw := strings.TrimSpace(os.Getenv("DOCCHAT_TEMPERATURE")); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			cfg.Temperature = parsed
		}
	}
	if raw := strings.TrimSpace(os.Getenv("DOCCHAT_MAX_TOKENS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			cfg.MaxTokens = parsed
		}
	}
	cfg.IndexPath = os.Getenv("DOCCHAT_INDEX_PATH")
	cfg.SummaryPath = os.Getenv("DOCCHAT_INDEX_SUMMARY_PATH")
	cfg.FlowsDir = os.Getenv("DOCCHAT_FLOWS_DIR")
	cfg.TemplatesDir = os.Getenv("DOCCHAT_TEMPLATES_DIR")
	cfg.SessionDB = os.Getenv("DOCCHAT_SESSION_DB")
	return cfg
}
