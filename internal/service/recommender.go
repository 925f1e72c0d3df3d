package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/user/moodpick/internal/metrics"
	"github.com/user/moodpick/internal/model"
	"github.com/user/moodpick/internal/vectorstore"
)

// ShortlistSize 每次推荐的最大候选数
const ShortlistSize = 5

// TagSource 标签提取
type TagSource interface {
	Extract(ctx context.Context, text string) TagResult
}

// DocumentIndex 推荐所需的索引能力
type DocumentIndex interface {
	GetAll(ctx context.Context) ([]string, []model.DocumentMetadata, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// NarrativeSource 推荐文案生成
type NarrativeSource interface {
	Narrate(ctx context.Context, message string, tags model.Tags, shortlist []model.ScoredDocument) (string, error)
}

// Recommendation 一次推荐的结果
type Recommendation struct {
	Reply     string
	Tags      model.Tags
	Shortlist []model.ScoredDocument
	NoMatch   bool
}

// Titles 候选片名，按排名顺序
func (r *Recommendation) Titles() []string {
	titles := make([]string, len(r.Shortlist))
	for i, d := range r.Shortlist {
		titles[i] = d.Metadata.Title
	}
	return titles
}

// NoMatchReply 没有匹配电影时的回复
func NoMatchReply(tags model.Tags) string {
	if len(tags) == 0 {
		return "요청에서 원하는 분위기를 파악하지 못해 추천할 영화를 찾지 못했어요. 조금 더 구체적으로 말씀해 주세요."
	}
	return fmt.Sprintf("'%s' 분위기에 맞는 영화를 찾지 못했어요. 다른 분위기로 다시 요청해 주세요.", tags.Join())
}

// Recommender 标签过滤 + 向量内积排序 + 按片名去重取前 5
type Recommender struct {
	tagger   TagSource
	index    DocumentIndex
	narrator NarrativeSource
	logger   zerolog.Logger
}

// NewRecommender 创建推荐服务
func NewRecommender(tagger TagSource, index DocumentIndex, narrator NarrativeSource, logger zerolog.Logger) *Recommender {
	return &Recommender{
		tagger:   tagger,
		index:    index,
		narrator: narrator,
		logger:   logger,
	}
}

// Recommend 处理一次推荐请求
func (s *Recommender) Recommend(ctx context.Context, message string) (rec *Recommendation, err error) {
	start := time.Now()
	defer func() {
		result := "ok"
		switch {
		case err != nil:
			result = "error"
		case rec.NoMatch:
			result = "no_match"
		}
		metrics.RecordRecommendation(result, time.Since(start))
	}()

	// 1. 提取用户标签（可能为空）
	tagResult := s.tagger.Extract(ctx, message)
	userTags := tagResult.Tags

	// 2. 取出全部文档，索引不可用时直接失败
	documents, metadatas, err := s.index.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	// 3. 按标签交集过滤，空标签不匹配任何文档
	var (
		candidates []string
		candMetas  []model.DocumentMetadata
	)
	for i, meta := range metadatas {
		if userTags.Intersects(meta.Tags()) {
			candidates = append(candidates, documents[i])
			candMetas = append(candMetas, meta)
		}
	}

	// 4. 没有候选时不做任何向量化
	if len(candidates) == 0 {
		s.logger.Info().
			Strs("tags", userTags).
			Str("tag_outcome", string(tagResult.Outcome)).
			Msg("[Recommend] 无匹配电影")
		return &Recommendation{
			Reply:   NoMatchReply(userTags),
			Tags:    userTags,
			NoMatch: true,
		}, nil
	}

	// 5. 向量化查询和候选文档
	queryVec, err := s.index.EmbedQuery(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	docVecs, err := s.index.EmbedDocuments(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("embed candidates: %w", err)
	}

	// 6. 内积打分
	scored := make([]model.ScoredDocument, len(candidates))
	for i := range candidates {
		score, err := vectorstore.Dot(queryVec, docVecs[i])
		if err != nil {
			return nil, fmt.Errorf("score candidate %d: %w", i, err)
		}
		scored[i] = model.ScoredDocument{Body: candidates[i], Metadata: candMetas[i], Score: score}
	}

	// 7~8. 稳定降序排序后按片名去重
	shortlist := SelectShortlist(scored, ShortlistSize)

	// 9. 生成文案
	reply, err := s.narrator.Narrate(ctx, message, userTags, shortlist)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Strs("tags", userTags).
		Int("candidates", len(candidates)).
		Int("shortlist", len(shortlist)).
		Dur("elapsed", time.Since(start)).
		Msg("[Recommend] 推荐完成")

	return &Recommendation{
		Reply:     reply,
		Tags:      userTags,
		Shortlist: shortlist,
	}, nil
}

// SelectShortlist 稳定降序排序（同分保持原顺序），再按片名去重，最多取 k 条。
// 去重发生在排序之后，同名电影只保留排在最前的一条
func SelectShortlist(scored []model.ScoredDocument, k int) []model.ScoredDocument {
	sorted := make([]model.ScoredDocument, len(scored))
	copy(sorted, scored)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	shortlist := make([]model.ScoredDocument, 0, min(k, len(sorted)))
	seen := make(map[string]struct{}, k)
	for _, d := range sorted {
		if len(shortlist) >= k {
			break
		}
		if _, dup := seen[d.Metadata.Title]; dup {
			continue
		}
		seen[d.Metadata.Title] = struct{}{}
		shortlist = append(shortlist, d)
	}
	return shortlist
}
