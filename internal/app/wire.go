// Package app 按配置组装各二进制共用的组件
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/user/moodpick/internal/config"
	"github.com/user/moodpick/internal/embedding"
	"github.com/user/moodpick/internal/llm"
	"github.com/user/moodpick/internal/repository"
	"github.com/user/moodpick/internal/service"
	"github.com/user/moodpick/internal/vectorstore"
)

// NewGenerator 按 llm.provider 创建文本生成器并套上熔断器
func NewGenerator(cfg config.LLMConfig, logger zerolog.Logger) (llm.Generator, error) {
	var gen llm.Generator
	switch cfg.Provider {
	case "openai":
		gen = llm.NewOpenAIChat(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.Timeout)
	case "gemini":
		gen = llm.NewGemini(cfg.GeminiKey, cfg.GeminiModel, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
	return llm.WithBreaker(gen, "llm-"+cfg.Provider, llm.BreakerConfig{
		MaxFailures: cfg.BreakerFailures,
		Timeout:     cfg.BreakerTimeout,
	}, logger), nil
}

// NewEmbedder 按 embedding.provider 创建向量化客户端
func NewEmbedder(cfg *config.Config) (embedding.Embedder, error) {
	e := cfg.Embedding
	switch e.Provider {
	case "ollama":
		return embedding.NewOllama(e.OllamaHost, e.OllamaModel, e.Dimensions, e.Timeout), nil
	case "openai":
		return embedding.NewOpenAI(cfg.LLM.OpenAIKey, e.OpenAIModel, cfg.LLM.OpenAIBaseURL, e.Dimensions, e.Timeout)
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", e.Provider)
	}
}

// closingBackend 关闭时一并释放底层连接
type closingBackend struct {
	vectorstore.Backend
	release func() error
}

func (b *closingBackend) Close() error {
	return errors.Join(b.Backend.Close(), b.release())
}

// OpenIndexBackend 打开索引存储。服务进程传 readOnly=true
func OpenIndexBackend(ctx context.Context, cfg *config.Config, readOnly bool, logger zerolog.Logger) (vectorstore.Backend, error) {
	switch cfg.Index.Backend {
	case "badger":
		return vectorstore.OpenBadger(cfg.Index.Path, readOnly, logger)
	case "pgvector":
		db, err := repository.OpenSQL(cfg.Database.DSN())
		if err != nil {
			return nil, err
		}
		pg, err := vectorstore.NewPGVector(db, cfg.Index.PGTable, cfg.Embedding.Dimensions, logger)
		if err != nil {
			db.Close()
			return nil, err
		}
		if !readOnly {
			if err := pg.EnsureSchema(ctx); err != nil {
				db.Close()
				return nil, err
			}
		}
		return &closingBackend{Backend: pg, release: db.Close}, nil
	case "qdrant":
		return vectorstore.NewQdrant(cfg.Index.QdrantAddr, cfg.Index.QdrantCollection, cfg.Embedding.Dimensions, logger)
	default:
		return nil, fmt.Errorf("unsupported index backend %q", cfg.Index.Backend)
	}
}

// NewIndex 组装向量索引
func NewIndex(ctx context.Context, cfg *config.Config, readOnly bool, logger zerolog.Logger) (*vectorstore.Index, error) {
	embedder, err := NewEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	backend, err := OpenIndexBackend(ctx, cfg, readOnly, logger)
	if err != nil {
		return nil, err
	}
	return vectorstore.NewIndex(backend, embedder, vectorstore.Options{
		BatchSize:   cfg.Embedding.BatchSize,
		Concurrency: cfg.Embedding.Concurrency,
	}, logger), nil
}

// NewLookupCache 按 cache.backend 创建片名查询缓存，返回的 close 用于释放连接
func NewLookupCache(ctx context.Context, cfg config.CacheConfig) (service.LookupCache, func() error, error) {
	switch cfg.Backend {
	case "memory":
		return service.NewMemoryLookupCache(cfg.Size, cfg.TTL), func() error { return nil }, nil
	case "redis":
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{cfg.RedisAddr}})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		return service.NewRedisLookupCache(client, cfg.TTL), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported cache backend %q", cfg.Backend)
	}
}

