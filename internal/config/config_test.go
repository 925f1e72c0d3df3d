package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5007", cfg.Server.Port)
	assert.Equal(t, "badger", cfg.Index.Backend)
	assert.Equal(t, "bge-m3", cfg.Embedding.OllamaModel)
	assert.Equal(t, 1200*time.Millisecond, cfg.Ingest.Throttle)
	assert.Equal(t, 8*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "sk-test", cfg.LLM.OpenAIKey)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "8080")
	t.Setenv("LLM_TIMEOUT", "3s")
	t.Setenv("INDEX_BACKEND", "qdrant")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("INGEST_GENRE_IDS", "28, 35")
	t.Setenv("LOG_RETENTION_DAYS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "qdrant", cfg.Index.Backend)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, []int{28, 35}, cfg.Ingest.GenreIDs)
	assert.Equal(t, 0, cfg.Retention.LogDays)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "moodpick.yaml")
	yml := `
llm:
  provider: gemini
  gemini_key: g-test
cache:
  backend: redis
  redis_addr: redis:6379
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "g-test", cfg.LLM.GeminiKey)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "redis:6379", cfg.Cache.RedisAddr)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := defaultConfig()
		cfg.LLM.OpenAIKey = "sk-test"
		return cfg
	}

	require.NoError(t, base().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"缺少 OpenAI key", func(c *Config) { c.LLM.OpenAIKey = "" }},
		{"未知生成服务", func(c *Config) { c.LLM.Provider = "claude" }},
		{"未知索引后端", func(c *Config) { c.Index.Backend = "chroma" }},
		{"维度非法", func(c *Config) { c.Embedding.Dimensions = 0 }},
		{"redis 缺少地址", func(c *Config) { c.Cache.Backend = "redis"; c.Cache.RedisAddr = "" }},
		{"日志格式非法", func(c *Config) { c.Log.Format = "xml" }},
		{"保留天数为负", func(c *Config) { c.Retention.LogDays = -1 }},
		{"列表缓存时间为 0", func(c *Config) { c.Cache.ListTTL = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "moodpick", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/moodpick?sslmode=disable", d.DSN())
}
