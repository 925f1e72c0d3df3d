package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/moodpick/internal/model"
)

func TestBuildDocuments_FirstDuplicateWins(t *testing.T) {
	records := []model.MovieRecord{
		{Title: "A", ReleaseYear: "2020", Overview: "x"},
		{Title: "A", ReleaseYear: "2020", Overview: "y"},
	}

	docs, stats := BuildDocuments(records)
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].Body, "[줄거리] x")
	assert.Equal(t, 1, stats.Duplicates)
	assert.Equal(t, 1, stats.Documents)
}

func TestBuildDocuments_SameTitleDifferentYear(t *testing.T) {
	records := []model.MovieRecord{
		{Title: "A", ReleaseYear: "2020", Overview: "x"},
		{Title: "A", ReleaseYear: "1998", Overview: "y"},
	}
	docs, _ := BuildDocuments(records)
	assert.Len(t, docs, 2)
}

func TestBuildDocuments_SkipsEmptyOverview(t *testing.T) {
	docs, stats := BuildDocuments([]model.MovieRecord{{Title: "B", Overview: ""}})
	assert.Empty(t, docs)
	assert.Equal(t, 1, stats.SkippedNoOverview)
}

func TestBuildDocuments_BodyAndMetadata(t *testing.T) {
	docs, _ := BuildDocuments([]model.MovieRecord{
		{Title: "기생충", ReleaseYear: "2019", Overview: "가난한 가족", MoodLabels: model.Tags{"긴장감", "블랙코미디"}},
		{Overview: "무명", MoodLabels: nil},
	})
	require.Len(t, docs, 2)

	assert.Equal(t, "[제목] 기생충 (2019)\n[줄거리] 가난한 가족\n[분위기 태그] 긴장감, 블랙코미디", docs[0].Body)
	assert.Equal(t, model.DocumentMetadata{Title: "기생충", Year: "2019", MoodLabels: "긴장감, 블랙코미디"}, docs[0].Metadata)

	assert.Equal(t, "[제목] 제목 없음 (0000)\n[줄거리] 무명\n[분위기 태그] ", docs[1].Body)
	assert.Equal(t, model.UntitledMovie, docs[1].Metadata.Title)
	assert.Equal(t, model.UnknownYear, docs[1].Metadata.Year)
	assert.Empty(t, docs[1].Metadata.Tags())
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "movies.json")
	data := `[{"title":"A","overview":"x","release_year":"2020","mood_labels":["감동"],"genre_id":18},{"title":"B","overview":"y","release_year":"2021"}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	records, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, model.Tags{"감동"}, records[0].MoodLabels)
	require.NotNil(t, records[0].GenreID)
	assert.Equal(t, 18, *records[0].GenreID)
	assert.Nil(t, records[1].GenreID)
}

func TestLoadCatalog_Errors(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"title":"A"}`), 0o600))
	_, err = LoadCatalog(path)
	assert.Error(t, err)
}

func TestInspectDocuments(t *testing.T) {
	metas := []model.DocumentMetadata{
		{Title: "A", Year: "2020"},
		{Title: "A", Year: "2020"},
		{Title: "B", Year: "2021"},
		{Title: "C", Year: "2022"},
		{Title: "D", Year: "2023"},
		{Title: "E", Year: "2024"},
	}
	r := InspectDocuments(metas)
	assert.Equal(t, 6, r.Documents)
	assert.Equal(t, 5, r.UniqueKeys)
	assert.Equal(t, map[string]int{"A (2020)": 2}, r.Duplicates)
	assert.Len(t, r.Samples, 5)
}
