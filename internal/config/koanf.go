package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths 按顺序查找的配置文件
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

// ConfigPathEnvVar 可覆盖配置文件路径的环境变量
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Env: "development",
		Server: ServerConfig{
			Port:           "5007",
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   30 * time.Second,
			AllowedOrigins: []string{"http://localhost:3000"},
			LogsLimit:      50,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "postgres",
			Name:     "moodpick",
			SSLMode:  "disable",
		},
		LLM: LLMConfig{
			Provider:        "openai",
			OpenAIBaseURL:   "https://api.openai.com/v1",
			OpenAIModel:     "gpt-4o",
			GeminiModel:     "gemini-2.5-flash",
			Timeout:         8 * time.Second,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Embedding: EmbeddingConfig{
			Provider:    "ollama",
			OllamaHost:  "http://localhost:11434",
			OllamaModel: "bge-m3",
			OpenAIModel: "text-embedding-3-small",
			Dimensions:  1024,
			Timeout:     30 * time.Second,
			BatchSize:   32,
			Concurrency: 4,
		},
		Index: IndexConfig{
			Backend:          "badger",
			Path:             "./data/index",
			PGTable:          "movie_embeddings",
			QdrantAddr:       "localhost:6334",
			QdrantCollection: "movies",
		},
		TMDB: TMDBConfig{
			BaseURL:  "https://api.themoviedb.org/3",
			Language: "ko-KR",
			Timeout:  8 * time.Second,
		},
		Cache: CacheConfig{
			Backend:   "memory",
			RedisAddr: "localhost:6379",
			TTL:       6 * time.Hour,
			Size:      1000,
			ListTTL:   30 * time.Second,
		},
		Ingest: IngestConfig{
			Throttle: 1200 * time.Millisecond,
			Pages:    5,
			GenreIDs: []int{28, 35, 18, 27, 10749, 878, 16},
			Output:   "movies.json",
		},
		Retention: RetentionConfig{
			LogDays: 90,
		},
	}
}

// Load 按 默认值 -> 配置文件 -> 环境变量 的顺序加载配置
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("加载默认配置失败: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("加载配置文件 %s 失败: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("加载环境变量失败: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置校验失败: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// processSliceFields 环境变量中的逗号分隔值转换为切片
func processSliceFields(k *koanf.Koanf) error {
	if raw, ok := k.Get("server.allowed_origins").(string); ok {
		if err := k.Set("server.allowed_origins", splitCSV(raw)); err != nil {
			return fmt.Errorf("解析 server.allowed_origins 失败: %w", err)
		}
	}

	if raw, ok := k.Get("ingest.genre_ids").(string); ok {
		parts := splitCSV(raw)
		ids := make([]int, 0, len(parts))
		for _, p := range parts {
			id, err := strconv.Atoi(p)
			if err != nil {
				return fmt.Errorf("ingest.genre_ids 含非法值 %q: %w", p, err)
			}
			ids = append(ids, id)
		}
		if err := k.Set("ingest.genre_ids", ids); err != nil {
			return fmt.Errorf("解析 ingest.genre_ids 失败: %w", err)
		}
	}
	return nil
}

func splitCSV(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var envMappings = map[string]string{
	"app_env":                "env",
	"port":                   "server.port",
	"allowed_origins":        "server.allowed_origins",
	"logs_limit":             "server.logs_limit",
	"log_level":              "log.level",
	"log_format":             "log.format",
	"db_host":                "database.host",
	"db_port":                "database.port",
	"db_user":                "database.user",
	"db_password":            "database.password",
	"db_name":                "database.name",
	"db_sslmode":             "database.sslmode",
	"llm_provider":           "llm.provider",
	"openai_api_key":         "llm.openai_key",
	"openai_base_url":        "llm.openai_base_url",
	"openai_model":           "llm.openai_model",
	"gemini_api_key":         "llm.gemini_key",
	"gemini_model":           "llm.gemini_model",
	"llm_timeout":            "llm.timeout",
	"llm_breaker_failures":   "llm.breaker_failures",
	"llm_breaker_timeout":    "llm.breaker_timeout",
	"embedding_provider":     "embedding.provider",
	"ollama_host":            "embedding.ollama_host",
	"ollama_model":           "embedding.ollama_model",
	"openai_embedding_model": "embedding.openai_model",
	"embedding_dimensions":   "embedding.dimensions",
	"embedding_timeout":      "embedding.timeout",
	"embedding_batch_size":   "embedding.batch_size",
	"embedding_concurrency":  "embedding.concurrency",
	"index_backend":          "index.backend",
	"index_path":             "index.path",
	"index_pg_table":         "index.pg_table",
	"qdrant_addr":            "index.qdrant_addr",
	"qdrant_collection":      "index.qdrant_collection",
	"tmdb_api_key":           "tmdb.api_key",
	"tmdb_base_url":          "tmdb.base_url",
	"tmdb_language":          "tmdb.language",
	"tmdb_timeout":           "tmdb.timeout",
	"cache_backend":          "cache.backend",
	"redis_addr":             "cache.redis_addr",
	"cache_ttl":              "cache.ttl",
	"cache_size":             "cache.size",
	"cache_list_ttl":         "cache.list_ttl",
	"ingest_throttle":        "ingest.throttle",
	"ingest_pages":           "ingest.pages",
	"ingest_genre_ids":       "ingest.genre_ids",
	"ingest_output":          "ingest.output",
	"log_retention_days":     "retention.log_days",
}

// envTransformFunc 环境变量名 -> koanf 路径，未登记的变量直接忽略
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
