package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/user/moodpick/internal/model"
)

func TestTagExtractor_Extract(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		err     error
		want    model.Tags
		outcome TagOutcome
	}{
		{"纯 JSON", `["힐링", "감동"]`, nil, model.Tags{"힐링", "감동"}, TagOutcomeOK},
		{"json 代码块", "```json\n[\"a\",\"b\"]\n```", nil, model.Tags{"a", "b"}, TagOutcomeOK},
		{"无语言名代码块", "```\n[\"a\"]\n```", nil, model.Tags{"a"}, TagOutcomeOK},
		{"非 JSON", "not json", nil, model.Tags{}, TagOutcomeMalformed},
		{"空数组", "[]", nil, model.Tags{}, TagOutcomeEmpty},
		{"空字符串元素被丢弃", `["", "무서운"]`, nil, model.Tags{"무서운"}, TagOutcomeOK},
		{"调用失败", "", errors.New("quota exceeded"), model.Tags{}, TagOutcomeCallFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{text: tt.text, err: tt.err}
			tagger := NewTagExtractor(gen, PurposeQuery, time.Second, zerolog.Nop())

			res := tagger.Extract(context.Background(), "따뜻한 영화 추천해줘")
			assert.Equal(t, tt.outcome, res.Outcome)
			assert.Equal(t, tt.want, res.Tags)
			assert.NotNil(t, res.Tags)
			assert.True(t, gen.deadline)
		})
	}
}

func TestTagExtractor_BlankInputSkipsCall(t *testing.T) {
	gen := &stubGenerator{text: `["a"]`}
	tagger := NewTagExtractor(gen, PurposeQuery, time.Second, zerolog.Nop())

	res := tagger.Extract(context.Background(), "   ")
	assert.Equal(t, TagOutcomeEmpty, res.Outcome)
	assert.Empty(t, res.Tags)
	assert.Zero(t, gen.calls)
}

func TestTagExtractor_CatalogPrompt(t *testing.T) {
	gen := &stubGenerator{text: `["잔잔한"]`}
	tagger := NewTagExtractor(gen, PurposeCatalog, time.Second, zerolog.Nop())

	res := tagger.Extract(context.Background(), "한 가족의 이야기")
	assert.Equal(t, TagOutcomeOK, res.Outcome)
	assert.Contains(t, gen.lastUser, "줄거리: \"한 가족의 이야기\"")
}

func TestTagResult_Degraded(t *testing.T) {
	assert.True(t, TagResult{Outcome: TagOutcomeMalformed}.Degraded())
	assert.True(t, TagResult{Outcome: TagOutcomeCallFailed}.Degraded())
	assert.False(t, TagResult{Outcome: TagOutcomeEmpty}.Degraded())
	assert.False(t, TagResult{Outcome: TagOutcomeOK}.Degraded())
}
