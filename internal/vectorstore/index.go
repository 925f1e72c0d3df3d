// Package vectorstore 持久化的电影向量索引
//
// 索引由两部分组成：Backend 负责落盘（badger / pgvector / qdrant），
// embedding.Embedder 负责把文本变成向量。构建是破坏性的，每次 Build
// 都会先清空旧数据；服务进程只读。
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/user/moodpick/internal/embedding"
	"github.com/user/moodpick/internal/model"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrIndexUnavailable 索引不存在、未构建完成或无法读取
	ErrIndexUnavailable = errors.New("vector index unavailable")
	// ErrEmptyBuild 不允许用空文档集构建索引
	ErrEmptyBuild = errors.New("vector index: empty document set")
	// ErrDimensionMismatch 向量维度与配置不一致
	ErrDimensionMismatch = errors.New("vector index: dimension mismatch")
	// ErrReadOnly 只读模式下不能构建
	ErrReadOnly = errors.New("vector index: opened read-only")
)

// Record 一条落盘数据，Seq 为构建顺序
type Record struct {
	Seq      int                   `json:"seq"`
	Vector   []float32             `json:"vector"`
	Document model.IndexedDocument `json:"document"`
}

// Backend 索引的持久化层
type Backend interface {
	// Replace 丢弃全部旧数据后写入 records
	Replace(ctx context.Context, records []Record) error
	// Load 按构建顺序返回全部数据；未构建时返回 ErrIndexUnavailable
	Load(ctx context.Context) ([]Record, error)
	Name() string
	Close() error
}

// Options 构建参数
type Options struct {
	BatchSize   int
	Concurrency int
}

// Index 向量索引
type Index struct {
	backend  Backend
	embedder embedding.Embedder
	opts     Options
	logger   zerolog.Logger
}

// NewIndex 创建索引
func NewIndex(backend Backend, embedder embedding.Embedder, opts Options, logger zerolog.Logger) *Index {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 32
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &Index{
		backend:  backend,
		embedder: embedder,
		opts:     opts,
		logger:   logger,
	}
}

// Build 向量化全部文档并整体替换索引内容
func (idx *Index) Build(ctx context.Context, docs []model.IndexedDocument) error {
	if len(docs) == 0 {
		return ErrEmptyBuild
	}

	bodies := make([]string, len(docs))
	for i, d := range docs {
		bodies[i] = d.Body
	}

	vectors, err := idx.EmbedDocuments(ctx, bodies)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}

	records := make([]Record, len(docs))
	for i, d := range docs {
		records[i] = Record{Seq: i, Vector: vectors[i], Document: d}
	}

	if err := idx.backend.Replace(ctx, records); err != nil {
		return fmt.Errorf("%s replace: %w", idx.backend.Name(), err)
	}

	idx.logger.Info().
		Str("backend", idx.backend.Name()).
		Str("model", idx.embedder.Model()).
		Int("documents", len(records)).
		Msg("[Index] 构建完成")
	return nil
}

// GetAll 返回全部文档正文与元数据，两者下标对齐，顺序与构建时一致
func (idx *Index) GetAll(ctx context.Context) ([]string, []model.DocumentMetadata, error) {
	records, err := idx.load(ctx)
	if err != nil {
		return nil, nil, err
	}

	documents := make([]string, len(records))
	metadatas := make([]model.DocumentMetadata, len(records))
	for i, r := range records {
		documents[i] = r.Document.Body
		metadatas[i] = r.Document.Metadata
	}
	return documents, metadatas, nil
}

func (idx *Index) load(ctx context.Context) ([]Record, error) {
	records, err := idx.backend.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrIndexUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrIndexUnavailable, idx.backend.Name(), err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s holds no documents", ErrIndexUnavailable, idx.backend.Name())
	}
	return records, nil
}

// EmbedQuery 向量化查询文本
func (idx *Index) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vec, err := idx.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := idx.checkDim(vec); err != nil {
		return nil, err
	}
	return vec, nil
}

// EmbedDocuments 分批并发向量化，结果顺序与输入一致
func (idx *Index) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	if len(texts) == 0 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.opts.Concurrency)

	for start := 0; start < len(texts); start += idx.opts.BatchSize {
		end := min(start+idx.opts.BatchSize, len(texts))
		g.Go(func() error {
			vecs, err := idx.embedder.EmbedDocuments(gctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("batch %d-%d: %w", start, end, err)
			}
			if len(vecs) != end-start {
				return fmt.Errorf("batch %d-%d: got %d vectors", start, end, len(vecs))
			}
			for i, v := range vecs {
				if err := idx.checkDim(v); err != nil {
					return err
				}
				out[start+i] = v
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (idx *Index) checkDim(vec []float32) error {
	want := idx.embedder.Dimensions()
	if want > 0 && len(vec) != want {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vec), want)
	}
	return nil
}

// SimilaritySearch 全量扫描 + 内积排序，只用于离线诊断
func (idx *Index) SimilaritySearch(ctx context.Context, query string, k int) ([]model.ScoredDocument, error) {
	records, err := idx.load(ctx)
	if err != nil {
		return nil, err
	}
	qv, err := idx.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	scored := make([]model.ScoredDocument, 0, len(records))
	for _, r := range records {
		s, err := Dot(qv, r.Vector)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", r.Seq, err)
		}
		scored = append(scored, model.ScoredDocument{
			Body:     r.Document.Body,
			Metadata: r.Document.Metadata,
			Score:    s,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if k > 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// Backend 当前使用的持久化层
func (idx *Index) Backend() Backend { return idx.backend }

// Close 关闭持久化层
func (idx *Index) Close() error {
	return idx.backend.Close()
}

// Dot 内积（不做归一化），float64 累加
func Dot(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum, nil
}
