package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTMDBClient_SearchMovie_APIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/movie", r.URL.Path)
		assert.Equal(t, "기생충", r.URL.Query().Get("query"))
		assert.Equal(t, "ko-KR", r.URL.Query().Get("language"))
		assert.Equal(t, "v3key", r.URL.Query().Get("api_key"))
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"page":1,"results":[{"id":496243,"title":"기생충","overview":"o","release_date":"2019-05-30","poster_path":"/p.jpg"}]}`))
	}))
	defer server.Close()

	c := NewTMDBClient("v3key", server.URL, "", time.Second)
	got, err := c.SearchMovie(context.Background(), "기생충")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 496243, got[0].ID)
	assert.Equal(t, "2019-05-30", got[0].ReleaseDate)
}

func TestTMDBClient_Bearer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/discover/movie", r.URL.Path)
		assert.Equal(t, "Bearer eyJtoken", r.Header.Get("Authorization"))
		assert.Empty(t, r.URL.Query().Get("api_key"))
		assert.Equal(t, "27", r.URL.Query().Get("with_genres"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		_, _ = w.Write([]byte(`{"page":2,"results":[]}`))
	}))
	defer server.Close()

	c := NewTMDBClient("eyJtoken", server.URL, "ko-KR", time.Second)
	got, err := c.DiscoverByGenre(context.Background(), 27, 2)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTMDBClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status_message":"Invalid API key"}`))
	}))
	defer server.Close()

	c := NewTMDBClient("bad", server.URL, "", time.Second)
	_, err := c.Popular(context.Background(), 1)
	assert.Error(t, err)

	_, err = NewTMDBClient("", server.URL, "", time.Second).TopRated(context.Background(), 1)
	assert.Error(t, err)
}
