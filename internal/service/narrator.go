package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/user/moodpick/internal/llm"
	"github.com/user/moodpick/internal/model"
)

// MovieMarker 推荐文案中每部电影前的标记
const MovieMarker = "🎬"

// ErrNarrativeUnavailable 推荐文案生成失败（调用失败或返回空白）
var ErrNarrativeUnavailable = errors.New("narrative generation unavailable")

// Narrator 根据候选列表生成推荐文案
type Narrator struct {
	gen     llm.Generator
	timeout time.Duration
	logger  zerolog.Logger
}

// NewNarrator 创建文案生成器
func NewNarrator(gen llm.Generator, timeout time.Duration, logger zerolog.Logger) *Narrator {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Narrator{gen: gen, timeout: timeout, logger: logger}
}

// Narrate 生成文案。失败一律包装为 ErrNarrativeUnavailable
func (n *Narrator) Narrate(ctx context.Context, message string, tags model.Tags, shortlist []model.ScoredDocument) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	var b strings.Builder
	for _, d := range shortlist {
		fmt.Fprintf(&b, "- %s (%s)\n", d.Metadata.Title, d.Metadata.Year)
	}

	text, err := n.gen.Generate(ctx, narrativeSystemPrompt, fmt.Sprintf(narrativeUserPrompt, message, tags.Join(), b.String()))
	if err != nil {
		n.logger.Error().Err(err).Msg("[Narrator] 推荐文案生成失败")
		return "", fmt.Errorf("%w: %v", ErrNarrativeUnavailable, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: blank answer", ErrNarrativeUnavailable)
	}
	return text, nil
}
