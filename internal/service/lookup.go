package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/user/moodpick/internal/model"
	"golang.org/x/sync/singleflight"
)

// ErrMovieNotFound 电影数据库中找不到该片名
var ErrMovieNotFound = errors.New("movie not found")

const tmdbPosterBase = "https://image.tmdb.org/t/p/w500"

// lookupTimeout 共享查询（搜索 + 打标签）的总时限
const lookupTimeout = 30 * time.Second

// MovieSearcher 片名搜索
type MovieSearcher interface {
	SearchMovie(ctx context.Context, title string) ([]TMDBMovie, error)
}

// LookupService 按片名查询电影并打上情绪标签
type LookupService struct {
	searcher MovieSearcher
	tagger   TagSource
	cache    LookupCache
	group    singleflight.Group
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewLookupService 创建查询服务
func NewLookupService(searcher MovieSearcher, tagger TagSource, cache LookupCache, logger zerolog.Logger) *LookupService {
	return &LookupService{
		searcher: searcher,
		tagger:   tagger,
		cache:    cache,
		timeout:  lookupTimeout,
		logger:   logger,
	}
}

func lookupKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// LookupAndTag 取搜索结果第一条，对简介调用一次标签提取
func (s *LookupService) LookupAndTag(ctx context.Context, title string) (*model.MovieDetail, error) {
	key := lookupKey(title)

	if detail, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("title", title).Msg("[Lookup] 读取缓存失败")
	} else if ok {
		return detail, nil
	}

	// 使用 singleflight 避免同一片名并发重复查询；共享查询不跟随单个调用方取消
	ch := s.group.DoChan(key, func() (interface{}, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.lookup(shared, key, strings.TrimSpace(title))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.MovieDetail), nil
	}
}

func (s *LookupService) lookup(ctx context.Context, key, title string) (*model.MovieDetail, error) {
	results, err := s.searcher.SearchMovie(ctx, title)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrMovieNotFound
	}

	m := results[0]
	detail := &model.MovieDetail{
		ID:          m.ID,
		Title:       m.Title,
		Overview:    m.Overview,
		ReleaseYear: model.ReleaseYearFromDate(m.ReleaseDate),
		MoodLabels:  model.Tags{},
	}
	if m.PosterPath != "" {
		detail.PosterPath = tmdbPosterBase + m.PosterPath
	}

	tagResult := s.tagger.Extract(ctx, m.Overview)
	detail.MoodLabels = tagResult.Tags

	// 调用失败属于临时问题，不写缓存
	if tagResult.Outcome != TagOutcomeCallFailed {
		if err := s.cache.Set(ctx, key, detail); err != nil {
			s.logger.Warn().Err(err).Str("title", title).Msg("[Lookup] 写入缓存失败")
		}
	}
	return detail, nil
}
