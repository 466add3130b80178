// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package config loads application configuration from a YAML file with
// environment variable overrides for credentials and model selection.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AIConfig configures the chat and embedding model endpoints.
// Any OpenAI-compatible server works, including a local Ollama.
type AIConfig struct {
	EmbeddingHost  string `yaml:"embedding_host"`
	ChatHost       string `yaml:"chat_host"`
	EmbeddingModel string `yaml:"embedding_model"`
	ChatModel      string `yaml:"chat_model"`
	APIKey         string `yaml:"api_key"`
}

// QdrantConfig contains connection details for the Qdrant vector store.
type QdrantConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
	// Distance is the similarity metric for new collections.
	Distance string `yaml:"distance"`
	// VectorSize, when non-zero, declares the expected embedding width.
	// It is checked against what the embedder actually produces.
	VectorSize int `yaml:"vector_size"`
}

// ChunkingConfig configures how documents are split.
type ChunkingConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// IndexingConfig configures the batch indexing run.
type IndexingConfig struct {
	BatchSize     int `yaml:"batch_size"`
	MaxRetries    int `yaml:"max_retries"`
	RetryDelaySec int `yaml:"retry_delay_sec"`
	BatchPauseMS  int `yaml:"batch_pause_ms"`
}

// RetrievalConfig configures query answering.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// StorageConfig locates local persistent state.
type StorageConfig struct {
	// MappingsPath is the JSON document holding source identity mappings.
	MappingsPath string `yaml:"mappings_path"`
	// HistoryPath is the BadgerDB directory holding conversation history.
	HistoryPath string `yaml:"history_path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Config is the root application configuration.
type Config struct {
	AI        AIConfig        `yaml:"ai"`
	Qdrant    QdrantConfig    `yaml:"qdrant"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Indexing  IndexingConfig  `yaml:"indexing"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Storage   StorageConfig   `yaml:"storage"`
	Server    ServerConfig    `yaml:"server"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults. Environment overrides are applied either way.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	applyDefaults(cfg)
	applyEnv(cfg)
	return cfg, nil
}

// LoadDefault tries ./ragdex.yaml first, then ~/.config/ragdex/config.yaml,
// falling back to defaults when neither exists.
func LoadDefault() (*Config, error) {
	if _, err := os.Stat("ragdex.yaml"); err == nil {
		return Load("ragdex.yaml")
	}

	home, err := os.UserHomeDir()
	if err == nil {
		userPath := filepath.Join(home, ".config", "ragdex", "config.yaml")
		if _, err := os.Stat(userPath); err == nil {
			return Load(userPath)
		}
	}
	return Load("")
}

// Validate reports missing required settings. Credentials for the vector
// store have no sane default and must be supplied.
func (c *Config) Validate() error {
	var missing []string
	if c.Qdrant.URL == "" {
		missing = append(missing, "QDRANT_URL")
	}
	if c.Qdrant.APIKey == "" {
		missing = append(missing, "QDRANT_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.AI.EmbeddingHost == "" {
		cfg.AI.EmbeddingHost = "http://localhost:11434/v1"
	}
	if cfg.AI.ChatHost == "" {
		cfg.AI.ChatHost = "http://localhost:11434/v1"
	}
	if cfg.AI.EmbeddingModel == "" {
		cfg.AI.EmbeddingModel = "embeddinggemma"
	}
	if cfg.AI.ChatModel == "" {
		cfg.AI.ChatModel = "qwen2.5:3b"
	}
	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = "none"
	}
	if cfg.Qdrant.Distance == "" {
		cfg.Qdrant.Distance = "Cosine"
	}
	if cfg.Chunking.ChunkSize == 0 {
		cfg.Chunking.ChunkSize = 1000
	}
	if cfg.Chunking.ChunkOverlap == 0 {
		cfg.Chunking.ChunkOverlap = 200
	}
	if cfg.Indexing.BatchSize == 0 {
		cfg.Indexing.BatchSize = 10
	}
	if cfg.Indexing.MaxRetries == 0 {
		cfg.Indexing.MaxRetries = 3
	}
	if cfg.Indexing.RetryDelaySec == 0 {
		cfg.Indexing.RetryDelaySec = 2
	}
	if cfg.Indexing.BatchPauseMS == 0 {
		cfg.Indexing.BatchPauseMS = 500
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.Storage.MappingsPath == "" {
		cfg.Storage.MappingsPath = "data/mappings.json"
	}
	if cfg.Storage.HistoryPath == "" {
		cfg.Storage.HistoryPath = "data/history"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
}

// applyEnv overlays environment variables on top of file values.
// Credentials and model choices follow the environment so a config file
// never has to hold secrets.
func applyEnv(cfg *Config) {
	setString(&cfg.Qdrant.URL, "QDRANT_URL")
	setString(&cfg.Qdrant.APIKey, "QDRANT_API_KEY")
	setString(&cfg.AI.APIKey, "RAGDEX_API_KEY")
	setString(&cfg.AI.ChatModel, "CHAT_MODEL")
	setString(&cfg.AI.EmbeddingModel, "EMBEDDING_MODEL")
	setInt(&cfg.Chunking.ChunkSize, "CHUNK_SIZE")
	setInt(&cfg.Chunking.ChunkOverlap, "CHUNK_OVERLAP")
	setInt(&cfg.Indexing.BatchSize, "BATCH_SIZE")
	setInt(&cfg.Retrieval.TopK, "TOP_K_RESULTS")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
