package service

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/user/moodpick/internal/model"
)

type mockTagger struct{ mock.Mock }

func (m *mockTagger) Extract(ctx context.Context, text string) TagResult {
	args := m.Called(ctx, text)
	return args.Get(0).(TagResult)
}

type mockIndex struct{ mock.Mock }

func (m *mockIndex) GetAll(ctx context.Context) ([]string, []model.DocumentMetadata, error) {
	args := m.Called(ctx)
	docs, _ := args.Get(0).([]string)
	metas, _ := args.Get(1).([]model.DocumentMetadata)
	return docs, metas, args.Error(2)
}

func (m *mockIndex) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	vec, _ := args.Get(0).([]float32)
	return vec, args.Error(1)
}

func (m *mockIndex) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	vecs, _ := args.Get(0).([][]float32)
	return vecs, args.Error(1)
}

type mockNarrator struct{ mock.Mock }

func (m *mockNarrator) Narrate(ctx context.Context, message string, tags model.Tags, shortlist []model.ScoredDocument) (string, error) {
	args := m.Called(ctx, message, tags, shortlist)
	return args.String(0), args.Error(1)
}

// stubGenerator 固定返回值的 llm.Generator
type stubGenerator struct {
	mu       sync.Mutex
	text     string
	err      error
	calls    int
	lastUser string
	deadline bool
}

func (s *stubGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastUser = user
	_, s.deadline = ctx.Deadline()
	return s.text, s.err
}

// fixedTagger 总是返回同一组标签
type fixedTagger struct {
	result TagResult
	calls  int
}

func (f *fixedTagger) Extract(_ context.Context, _ string) TagResult {
	f.calls++
	return f.result
}
