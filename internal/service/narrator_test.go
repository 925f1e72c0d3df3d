package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/moodpick/internal/model"
)

var shortlist = []model.ScoredDocument{
	{Metadata: model.DocumentMetadata{Title: "기생충", Year: "2019"}},
	{Metadata: model.DocumentMetadata{Title: "리틀 포레스트", Year: "2018"}},
}

func TestNarrator_Narrate(t *testing.T) {
	gen := &stubGenerator{text: "  🎬 기생충 (2019)\n🎬 리틀 포레스트 (2018)\n"}
	n := NewNarrator(gen, time.Second, zerolog.Nop())

	text, err := n.Narrate(context.Background(), "힐링 영화", model.Tags{"힐링"}, shortlist)
	require.NoError(t, err)
	assert.Equal(t, "🎬 기생충 (2019)\n🎬 리틀 포레스트 (2018)", text)
	assert.Contains(t, gen.lastUser, "- 기생충 (2019)")
	assert.Contains(t, gen.lastUser, "- 리틀 포레스트 (2018)")
	assert.Contains(t, gen.lastUser, "분위기 태그: 힐링")
	assert.True(t, gen.deadline)
}

func TestNarrator_Failures(t *testing.T) {
	tests := []struct {
		name string
		gen  *stubGenerator
	}{
		{"call failed", &stubGenerator{err: errors.New("503")}},
		{"blank answer", &stubGenerator{text: "  \n "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNarrator(tt.gen, time.Second, zerolog.Nop())
			_, err := n.Narrate(context.Background(), "힐링 영화", model.Tags{"힐링"}, shortlist)
			assert.ErrorIs(t, err, ErrNarrativeUnavailable)
		})
	}
}
