package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/user/moodpick/internal/llm"
	"github.com/user/moodpick/internal/metrics"
	"github.com/user/moodpick/internal/model"
	"github.com/user/moodpick/internal/utils"
)

// TagPurpose 标签提取的场景
type TagPurpose string

const (
	// PurposeQuery 从用户请求中提取 2~4 个标签
	PurposeQuery TagPurpose = "query"
	// PurposeCatalog 从影片简介中提取 2~3 个标签
	PurposeCatalog TagPurpose = "catalog"
)

// TagOutcome 标签提取结果分类
type TagOutcome string

const (
	TagOutcomeOK         TagOutcome = "ok"
	TagOutcomeEmpty      TagOutcome = "empty"
	TagOutcomeMalformed  TagOutcome = "malformed"
	TagOutcomeCallFailed TagOutcome = "call_failed"
)

// TagResult 标签提取结果。除 OK 外 Tags 都是空集合，Err 只用于日志
type TagResult struct {
	Tags    model.Tags
	Outcome TagOutcome
	Err     error
}

// Degraded 是否因为上游问题退化成空标签
func (r TagResult) Degraded() bool {
	return r.Outcome == TagOutcomeMalformed || r.Outcome == TagOutcomeCallFailed
}

// TagExtractor 调用文本生成服务提取情绪标签，失败时返回空标签而不是错误
type TagExtractor struct {
	gen     llm.Generator
	purpose TagPurpose
	timeout time.Duration
	logger  zerolog.Logger
}

// NewTagExtractor 创建标签提取器
func NewTagExtractor(gen llm.Generator, purpose TagPurpose, timeout time.Duration, logger zerolog.Logger) *TagExtractor {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &TagExtractor{
		gen:     gen,
		purpose: purpose,
		timeout: timeout,
		logger:  logger.With().Str("purpose", string(purpose)).Logger(),
	}
}

func (t *TagExtractor) prompts(text string) (string, string) {
	if t.purpose == PurposeCatalog {
		return catalogTagSystemPrompt, fmt.Sprintf(catalogTagUserPrompt, text)
	}
	return queryTagSystemPrompt, fmt.Sprintf(queryTagUserPrompt, text)
}

// Extract 提取标签，永远不会返回错误
func (t *TagExtractor) Extract(ctx context.Context, text string) TagResult {
	result := t.extract(ctx, text)
	metrics.RecordTagExtraction(string(t.purpose), string(result.Outcome))
	return result
}

func (t *TagExtractor) extract(ctx context.Context, text string) TagResult {
	if strings.TrimSpace(text) == "" {
		return TagResult{Tags: model.Tags{}, Outcome: TagOutcomeEmpty}
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	system, user := t.prompts(text)
	raw, err := t.gen.Generate(ctx, system, user)
	if err != nil {
		t.logger.Warn().Err(err).Msg("[Tagger] 标签生成调用失败，使用空标签")
		return TagResult{Tags: model.Tags{}, Outcome: TagOutcomeCallFailed, Err: err}
	}

	tags, err := utils.ParseTagArray(raw)
	if err != nil {
		t.logger.Warn().Err(err).Str("raw", raw).Msg("[Tagger] 标签解析失败，使用空标签")
		return TagResult{Tags: model.Tags{}, Outcome: TagOutcomeMalformed, Err: err}
	}

	kept := make(model.Tags, 0, len(tags))
	for _, tag := range tags {
		if tag != "" {
			kept = append(kept, tag)
		}
	}
	if len(kept) == 0 {
		return TagResult{Tags: kept, Outcome: TagOutcomeEmpty}
	}

	t.logger.Debug().Strs("tags", kept).Msg("[Tagger] 标签提取完成")
	return TagResult{Tags: kept, Outcome: TagOutcomeOK}
}
