// Package embedding 文本向量化服务客户端
package embedding

import (
	"context"
	"errors"
)

// Embedder 文本 -> 定长向量。同一份索引的构建与查询必须使用同一个模型
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Model() string
}

// ErrNoEmbedding 上游没有返回向量
var ErrNoEmbedding = errors.New("embedding: no vector returned")
