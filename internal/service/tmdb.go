package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/user/moodpick/internal/utils"
)

// TMDBMovie TMDB 列表接口中的一条电影
type TMDBMovie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
}

type tmdbPage struct {
	Page       int         `json:"page"`
	TotalPages int         `json:"total_pages"`
	Results    []TMDBMovie `json:"results"`
}

// TMDBClient TMDB v3 接口。v4 读令牌（eyJ 开头）走 Bearer，否则走 api_key 参数
type TMDBClient struct {
	http     *utils.HTTPClient
	baseURL  string
	apiKey   string
	language string
}

// NewTMDBClient 创建 TMDB 客户端
func NewTMDBClient(apiKey, baseURL, language string, timeout time.Duration) *TMDBClient {
	if baseURL == "" {
		baseURL = "https://api.themoviedb.org/3"
	}
	if language == "" {
		language = "ko-KR"
	}

	headers := map[string]string{}
	if isBearerToken(apiKey) {
		headers["Authorization"] = "Bearer " + apiKey
	}

	return &TMDBClient{
		http:     utils.NewHTTPClient(timeout, headers),
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		language: language,
	}
}

func isBearerToken(key string) bool {
	return strings.HasPrefix(key, "eyJ")
}

func (c *TMDBClient) get(ctx context.Context, path string, params url.Values) (*tmdbPage, error) {
	if c.apiKey == "" {
		return nil, errors.New("TMDB_API_KEY is not set")
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("language", c.language)
	if !isBearerToken(c.apiKey) {
		params.Set("api_key", c.apiKey)
	}

	var page tmdbPage
	if err := c.http.GetJSON(ctx, c.baseURL+path, params, &page); err != nil {
		return nil, fmt.Errorf("tmdb %s: %w", path, err)
	}
	return &page, nil
}

// SearchMovie 按片名搜索
func (c *TMDBClient) SearchMovie(ctx context.Context, title string) ([]TMDBMovie, error) {
	page, err := c.get(ctx, "/search/movie", url.Values{"query": {title}})
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

// Popular 热门电影
func (c *TMDBClient) Popular(ctx context.Context, page int) ([]TMDBMovie, error) {
	p, err := c.get(ctx, "/movie/popular", url.Values{"page": {strconv.Itoa(page)}})
	if err != nil {
		return nil, err
	}
	return p.Results, nil
}

// TopRated 高分电影
func (c *TMDBClient) TopRated(ctx context.Context, page int) ([]TMDBMovie, error) {
	p, err := c.get(ctx, "/movie/top_rated", url.Values{"page": {strconv.Itoa(page)}})
	if err != nil {
		return nil, err
	}
	return p.Results, nil
}

// DiscoverByGenre 按类型发现，热度降序
func (c *TMDBClient) DiscoverByGenre(ctx context.Context, genreID, page int) ([]TMDBMovie, error) {
	p, err := c.get(ctx, "/discover/movie", url.Values{
		"with_genres": {strconv.Itoa(genreID)},
		"sort_by":     {"popularity.desc"},
		"page":        {strconv.Itoa(page)},
	})
	if err != nil {
		return nil, err
	}
	return p.Results, nil
}
