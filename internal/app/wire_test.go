package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/moodpick/internal/config"
	"github.com/user/moodpick/internal/embedding"
	"github.com/user/moodpick/internal/model"
	"github.com/user/moodpick/internal/service"
	"github.com/user/moodpick/internal/vectorstore"
)

func TestNewGenerator(t *testing.T) {
	for _, p := range []string{"openai", "gemini"} {
		gen, err := NewGenerator(config.LLMConfig{Provider: p, OpenAIKey: "k", GeminiKey: "k", Timeout: time.Second}, zerolog.Nop())
		require.NoError(t, err, p)
		assert.NotNil(t, gen)
	}
	_, err := NewGenerator(config.LLMConfig{Provider: "claude"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestNewEmbedder(t *testing.T) {
	cfg := &config.Config{Embedding: config.EmbeddingConfig{Provider: "ollama", OllamaHost: "http://localhost:11434", OllamaModel: "bge-m3", Dimensions: 1024}}
	e, err := NewEmbedder(cfg)
	require.NoError(t, err)
	assert.IsType(t, &embedding.Ollama{}, e)
	assert.Equal(t, 1024, e.Dimensions())

	cfg.Embedding.Provider = "unknown"
	_, err = NewEmbedder(cfg)
	assert.Error(t, err)
}

func TestOpenIndexBackend_Badger(t *testing.T) {
	cfg := &config.Config{Index: config.IndexConfig{Backend: "badger", Path: filepath.Join(t.TempDir(), "index")}}

	b, err := OpenIndexBackend(context.Background(), cfg, true, zerolog.Nop())
	require.NoError(t, err)
	defer b.Close()
	assert.Equal(t, "badger", b.Name())

	_, err = b.Load(context.Background())
	assert.ErrorIs(t, err, vectorstore.ErrIndexUnavailable)

	cfg.Index.Backend = "faiss"
	_, err = OpenIndexBackend(context.Background(), cfg, true, zerolog.Nop())
	assert.Error(t, err)
}

func TestNewLookupCache(t *testing.T) {
	ctx := context.Background()

	mem, closeMem, err := NewLookupCache(ctx, config.CacheConfig{Backend: "memory", Size: 10, TTL: time.Minute})
	require.NoError(t, err)
	assert.IsType(t, &service.MemoryLookupCache{}, mem)
	assert.NoError(t, closeMem())

	mr := miniredis.RunT(t)
	rc, closeRedis, err := NewLookupCache(ctx, config.CacheConfig{Backend: "redis", RedisAddr: mr.Addr(), TTL: time.Minute})
	require.NoError(t, err)
	defer closeRedis()
	require.NoError(t, rc.Set(ctx, "k", &model.MovieDetail{Title: "A"}))
	got, ok, err := rc.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "A", got.Title)

	_, _, err = NewLookupCache(ctx, config.CacheConfig{Backend: "memcached"})
	assert.Error(t, err)
}
