package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config 应用配置
type Config struct {
	Env       string          `koanf:"env"`
	Server    ServerConfig    `koanf:"server"`
	Log       LogConfig       `koanf:"log"`
	Database  DatabaseConfig  `koanf:"database"`
	LLM       LLMConfig       `koanf:"llm"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	Index     IndexConfig     `koanf:"index"`
	TMDB      TMDBConfig      `koanf:"tmdb"`
	Cache     CacheConfig     `koanf:"cache"`
	Ingest    IngestConfig    `koanf:"ingest"`
	Retention RetentionConfig `koanf:"retention"`
}

// ServerConfig HTTP 服务
type ServerConfig struct {
	Port           string        `koanf:"port"`
	ReadTimeout    time.Duration `koanf:"read_timeout"`
	WriteTimeout   time.Duration `koanf:"write_timeout"`
	AllowedOrigins []string      `koanf:"allowed_origins"`
	LogsLimit      int           `koanf:"logs_limit"`
}

// LogConfig 日志
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// DatabaseConfig PostgreSQL 连接参数
type DatabaseConfig struct {
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"sslmode"`
}

// DSN 拼接 postgres 连接串
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// LLMConfig 文本生成服务
type LLMConfig struct {
	Provider        string        `koanf:"provider"` // openai | gemini
	OpenAIKey       string        `koanf:"openai_key"`
	OpenAIBaseURL   string        `koanf:"openai_base_url"`
	OpenAIModel     string        `koanf:"openai_model"`
	GeminiKey       string        `koanf:"gemini_key"`
	GeminiModel     string        `koanf:"gemini_model"`
	Timeout         time.Duration `koanf:"timeout"`
	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
}

// EmbeddingConfig 向量化服务
type EmbeddingConfig struct {
	Provider    string        `koanf:"provider"` // ollama | openai
	OllamaHost  string        `koanf:"ollama_host"`
	OllamaModel string        `koanf:"ollama_model"`
	OpenAIModel string        `koanf:"openai_model"`
	Dimensions  int           `koanf:"dimensions"`
	Timeout     time.Duration `koanf:"timeout"`
	BatchSize   int           `koanf:"batch_size"`
	Concurrency int           `koanf:"concurrency"`
}

// IndexConfig 向量索引存储
type IndexConfig struct {
	Backend          string `koanf:"backend"` // badger | pgvector | qdrant
	Path             string `koanf:"path"`
	PGTable          string `koanf:"pg_table"`
	QdrantAddr       string `koanf:"qdrant_addr"`
	QdrantCollection string `koanf:"qdrant_collection"`
}

// TMDBConfig 电影数据库 API
type TMDBConfig struct {
	APIKey   string        `koanf:"api_key"`
	BaseURL  string        `koanf:"base_url"`
	Language string        `koanf:"language"`
	Timeout  time.Duration `koanf:"timeout"`
}

// CacheConfig 查询缓存
type CacheConfig struct {
	Backend   string        `koanf:"backend"` // memory | redis
	RedisAddr string        `koanf:"redis_addr"`
	TTL       time.Duration `koanf:"ttl"`
	Size      int           `koanf:"size"`
	ListTTL   time.Duration `koanf:"list_ttl"`
}

// IngestConfig 目录抓取
type IngestConfig struct {
	Throttle time.Duration `koanf:"throttle"`
	Pages    int           `koanf:"pages"`
	GenreIDs []int         `koanf:"genre_ids"`
	Output   string        `koanf:"output"`
}

// RetentionConfig 日志保留
type RetentionConfig struct {
	LogDays int `koanf:"log_days"`
}

// IsProduction 是否生产环境
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate 校验枚举值与必填项
func (c *Config) Validate() error {
	var errs []error

	switch c.LLM.Provider {
	case "openai":
		if c.LLM.OpenAIKey == "" {
			errs = append(errs, errors.New("llm.openai_key 未设置 (OPENAI_API_KEY)"))
		}
	case "gemini":
		if c.LLM.GeminiKey == "" {
			errs = append(errs, errors.New("llm.gemini_key 未设置 (GEMINI_API_KEY)"))
		}
	default:
		errs = append(errs, fmt.Errorf("llm.provider 不支持: %q", c.LLM.Provider))
	}

	switch c.Embedding.Provider {
	case "ollama":
		if c.Embedding.OllamaHost == "" {
			errs = append(errs, errors.New("embedding.ollama_host 未设置"))
		}
	case "openai":
		if c.LLM.OpenAIKey == "" {
			errs = append(errs, errors.New("openai 向量化需要 OPENAI_API_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("embedding.provider 不支持: %q", c.Embedding.Provider))
	}
	if c.Embedding.Dimensions <= 0 {
		errs = append(errs, errors.New("embedding.dimensions 必须大于 0"))
	}

	switch c.Index.Backend {
	case "badger":
		if c.Index.Path == "" {
			errs = append(errs, errors.New("index.path 未设置"))
		}
	case "pgvector":
		if c.Index.PGTable == "" {
			errs = append(errs, errors.New("index.pg_table 未设置"))
		}
	case "qdrant":
		if c.Index.QdrantAddr == "" || c.Index.QdrantCollection == "" {
			errs = append(errs, errors.New("index.qdrant_addr / index.qdrant_collection 未设置"))
		}
	default:
		errs = append(errs, fmt.Errorf("index.backend 不支持: %q", c.Index.Backend))
	}

	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Cache.RedisAddr == "" {
			errs = append(errs, errors.New("cache.redis_addr 未设置 (REDIS_ADDR)"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.backend 不支持: %q", c.Cache.Backend))
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format 不支持: %q", c.Log.Format))
	}

	if c.Cache.ListTTL <= 0 {
		errs = append(errs, errors.New("cache.list_ttl 必须大于 0 (CACHE_LIST_TTL)"))
	}

	if c.Retention.LogDays < 0 {
		errs = append(errs, errors.New("retention.log_days 不能为负数"))
	}

	return errors.Join(errs...)
}
