package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port          int              `json:"port"`
	JWTSecret     string           `json:"jwt_secret"`
	JWTAudience   string           `json:"jwt_audience"`
	Database      DatabaseConfig   `json:"database"`
	LogConfig     logger.LogConfig `json:"log_config"`
	AI            AIConfig         `json:"ai"`
	Agent         AgentConfig      `json:"agent"`
	EmbedCache    EmbedCacheConfig `json:"embed_cache"`
	FileStore     FileStoreConfig  `json:"file_store"`
	CORSAllowlist []string         `json:"cors_allowlist"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type AIConfig struct {
	Provider       string      `json:"provider"`
	ChatModel      string      `json:"chat_model"`
	EmbedModel     string      `json:"embed_model"`
	EmbeddingDim   int         `json:"embedding_dim"`
	TimeoutSeconds int         `json:"timeout_seconds"`
	Data           interface{} `json:"data"`
}

type AgentConfig struct {
	// MaxDistance and MaxResults bound the semantic search tool. The defaults
	// come from the product side and have no documented rationale, so both
	// stay configurable.
	MaxDistance           float64 `json:"max_distance"`
	MaxResults            int     `json:"max_results"`
	MaxRetries            int     `json:"max_retries"`
	MaxTurns              int     `json:"max_turns"`
	ChatRateWindowSeconds int     `json:"chat_rate_window_seconds"`
}

type EmbedCacheConfig struct {
	LRUSize     int    `json:"lru_size"`
	LRUTTLHours int    `json:"lru_ttl_hours"`
	MaxAgeDays  int    `json:"max_age_days"`
	CleanupCron string `json:"cleanup_cron"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	if cfg.JWTAudience == "" {
		cfg.JWTAudience = "authenticated"
	}
	if cfg.Database.DSN == "" && (cfg.Database.Host == "" || cfg.Database.DBName == "") {
		return nil, fmt.Errorf("database.dsn or database.host/dbname is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.AI.Provider == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	if cfg.AI.ChatModel == "" {
		cfg.AI.ChatModel = "gemini-2.0-flash"
	}
	if cfg.AI.EmbedModel == "" {
		cfg.AI.EmbedModel = "text-embedding-004"
	}
	if cfg.AI.EmbeddingDim == 0 {
		cfg.AI.EmbeddingDim = 768
	}
	if cfg.AI.TimeoutSeconds == 0 {
		cfg.AI.TimeoutSeconds = 60
	}
	if cfg.Agent.MaxDistance == 0 {
		cfg.Agent.MaxDistance = 0.5
	}
	if cfg.Agent.MaxResults == 0 {
		cfg.Agent.MaxResults = 5
	}
	if cfg.Agent.MaxRetries == 0 {
		cfg.Agent.MaxRetries = 2
	}
	if cfg.Agent.MaxTurns == 0 {
		cfg.Agent.MaxTurns = 8
	}
	if cfg.EmbedCache.LRUSize == 0 {
		cfg.EmbedCache.LRUSize = 10000
	}
	if cfg.EmbedCache.LRUTTLHours == 0 {
		cfg.EmbedCache.LRUTTLHours = 2
	}
	if cfg.EmbedCache.MaxAgeDays == 0 {
		cfg.EmbedCache.MaxAgeDays = 30
	}
	if cfg.EmbedCache.CleanupCron == "" {
		cfg.EmbedCache.CleanupCron = "0 3 * * *"
	}
	return &cfg, nil
}
