package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// GenerationConfig bounds the answer generation call.
type GenerationConfig struct {
	Temperature float32 `yaml:"temperature"`
	TopP        float32 `yaml:"top_p"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// LLMConfig points at an OpenAI-compatible endpoint used for both
// embeddings and chat. The API key itself only ever comes from the
// environment.
type LLMConfig struct {
	BaseURL    string           `yaml:"base_url"`
	APIKeyEnv  string           `yaml:"api_key_env"`
	EmbedModel string           `yaml:"embed_model"`
	ChatModel  string           `yaml:"chat_model"`
	Generation GenerationConfig `yaml:"generation"`
}

// DocumentConfig describes the bundled document and its snapshot.
type DocumentConfig struct {
	Path         string `yaml:"path"`
	SnapshotPath string `yaml:"snapshot_path"`
	MinChunkSize int    `yaml:"min_chunk_size"`
	DefaultTopK  int    `yaml:"default_top_k"`
}

type Config struct {
	ServerAddr string         `yaml:"server_addr"`
	UploadDir  string         `yaml:"upload_dir"`
	LLM        LLMConfig      `yaml:"llm"`
	Document   DocumentConfig `yaml:"document"`
}

// Load reads the YAML config at path. A missing file yields defaults, so
// the server runs against a local LM Studio with zero configuration.
// Addresses and model names can still be overridden via environment.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}
	applyDefaults(cfg)
	applyEnv(cfg)
	return cfg, nil
}

// APIKey resolves the LLM API key from the configured environment variable.
// Local OpenAI-compatible servers accept any non-empty token.
func (c *Config) APIKey() string {
	if v := os.Getenv(c.LLM.APIKeyEnv); v != "" {
		return v
	}
	return "not-needed"
}

func defaultConfig() *Config {
	return &Config{
		ServerAddr: ":8080",
		UploadDir:  "data/uploads",
		LLM: LLMConfig{
			BaseURL:    "http://localhost:1234/v1",
			APIKeyEnv:  "OPENAI_API_KEY",
			EmbedModel: "text-embedding-nomic-embed-text-v1.5",
			ChatModel:  "google/gemma-3n-e4b",
			Generation: GenerationConfig{
				Temperature: 0.1,
				TopP:        0.9,
				MaxTokens:   2048,
			},
		},
		Document: DocumentConfig{
			Path:         "data/gdpr.pdf",
			SnapshotPath: "data/gdpr_index.gob",
			MinChunkSize: 100,
			DefaultTopK:  3,
		},
	}
}

func applyDefaults(cfg *Config) {
	def := defaultConfig()
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = def.ServerAddr
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = def.UploadDir
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = def.LLM.BaseURL
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = def.LLM.APIKeyEnv
	}
	if cfg.LLM.EmbedModel == "" {
		cfg.LLM.EmbedModel = def.LLM.EmbedModel
	}
	if cfg.LLM.ChatModel == "" {
		cfg.LLM.ChatModel = def.LLM.ChatModel
	}
	if cfg.LLM.Generation.Temperature == 0 {
		cfg.LLM.Generation.Temperature = def.LLM.Generation.Temperature
	}
	if cfg.LLM.Generation.TopP == 0 {
		cfg.LLM.Generation.TopP = def.LLM.Generation.TopP
	}
	if cfg.LLM.Generation.MaxTokens == 0 {
		cfg.LLM.Generation.MaxTokens = def.LLM.Generation.MaxTokens
	}
	if cfg.Document.MinChunkSize == 0 {
		cfg.Document.MinChunkSize = def.Document.MinChunkSize
	}
	if cfg.Document.DefaultTopK == 0 {
		cfg.Document.DefaultTopK = def.Document.DefaultTopK
	}
}

func applyEnv(cfg *Config) {
	cfg.ServerAddr = getenv("SERVER_ADDR", cfg.ServerAddr)
	cfg.LLM.BaseURL = getenv("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.EmbedModel = getenv("EMBED_MODEL", cfg.LLM.EmbedModel)
	cfg.LLM.ChatModel = getenv("LLM_MODEL", cfg.LLM.ChatModel)
	cfg.Document.Path = getenv("DOCUMENT_PATH", cfg.Document.Path)
	cfg.Document.SnapshotPath = getenv("SNAPSHOT_PATH", cfg.Document.SnapshotPath)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
