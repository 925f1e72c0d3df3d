package embedding

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

var _ Embedder = (*Ollama)(nil)

// Ollama 本地 Ollama /api/embeddings，每条文本一次调用
type Ollama struct {
	host       string
	model      string
	dimensions int
	client     *http.Client
}

// NewOllama 创建 Ollama 向量化客户端
func NewOllama(host, model string, dimensions int, timeout time.Duration) *Ollama {
	if host == "" {
		host = "http://localhost:11434"
	}
	if model == "" {
		model = "bge-m3"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Ollama{
		host:       strings.TrimRight(host, "/"),
		model:      model,
		dimensions: dimensions,
		client:     &http.Client{Timeout: timeout},
	}
}

// ollamaRequest Ollama embedding API 请求结构
type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// ollamaResponse Ollama embedding API 响应结构
type ollamaResponse struct {
	Embedding []float32 `json:"embedding"`
	Error     string    `json:"error,omitempty"`
}

// EmbedQuery 生成单条文本的向量
func (o *Ollama) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	jsonData, err := json.Marshal(ollamaRequest{Model: o.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.host+"/api/embeddings", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post request to ollama failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned error status: %d", resp.StatusCode)
	}

	var result ollamaResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode response failed: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("ollama error: %s", result.Error)
	}
	if len(result.Embedding) == 0 {
		return nil, ErrNoEmbedding
	}
	return result.Embedding, nil
}

// EmbedDocuments 逐条调用，结果与输入顺序一致
func (o *Ollama) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := o.EmbedQuery(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed document %d: %w", i, err)
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions 配置的向量维度
func (o *Ollama) Dimensions() int { return o.dimensions }

// Model 模型名
func (o *Ollama) Model() string { return o.model }
