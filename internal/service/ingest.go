package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/user/moodpick/internal/model"
	"golang.org/x/time/rate"
)

// CatalogSource 目录数据来源
type CatalogSource interface {
	Popular(ctx context.Context, page int) ([]TMDBMovie, error)
	TopRated(ctx context.Context, page int) ([]TMDBMovie, error)
	DiscoverByGenre(ctx context.Context, genreID, page int) ([]TMDBMovie, error)
}

// IngestPlan 抓取范围
type IngestPlan struct {
	Pages    int
	GenreIDs []int
}

// IngestStats 抓取统计
type IngestStats struct {
	Fetched     int
	NoOverview  int
	Tagged      int
	TagDegraded int
	FailedPages int
}

// IngestService 从 TMDB 抓取电影并打标签，生成目录文件
type IngestService struct {
	source  CatalogSource
	tagger  TagSource
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewIngestService throttle 为两次标签调用之间的最小间隔
func NewIngestService(source CatalogSource, tagger TagSource, throttle time.Duration, logger zerolog.Logger) *IngestService {
	return &IngestService{
		source:  source,
		tagger:  tagger,
		limiter: rate.NewLimiter(rate.Every(throttle), 1),
		logger:  logger,
	}
}

// Run 依次抓取热门、高分和各类型电影
func (s *IngestService) Run(ctx context.Context, plan IngestPlan) ([]model.MovieRecord, IngestStats, error) {
	var (
		records []model.MovieRecord
		stats   IngestStats
	)

	type fetchFn func(page int) ([]TMDBMovie, error)
	collect := func(label string, genreID *int, fetch fetchFn) error {
		for page := 1; page <= plan.Pages; page++ {
			movies, err := fetch(page)
			if err != nil {
				stats.FailedPages++
				s.logger.Warn().Err(err).Str("source", label).Int("page", page).Msg("[Ingest] 页面抓取失败")
				continue
			}
			for _, m := range movies {
				stats.Fetched++
				if m.Overview == "" {
					stats.NoOverview++
					continue
				}
				if err := s.limiter.Wait(ctx); err != nil {
					return err
				}

				res := s.tagger.Extract(ctx, m.Overview)
				if res.Degraded() {
					stats.TagDegraded++
				} else {
					stats.Tagged++
				}
				s.logger.Debug().Str("title", m.Title).Strs("tags", res.Tags).Msg("[Ingest] 标签完成")

				records = append(records, model.MovieRecord{
					Title:       m.Title,
					Overview:    m.Overview,
					ReleaseYear: model.ReleaseYearFromDate(m.ReleaseDate),
					MoodLabels:  res.Tags,
					GenreID:     genreID,
				})
			}
		}
		return nil
	}

	if err := collect("popular", nil, func(p int) ([]TMDBMovie, error) { return s.source.Popular(ctx, p) }); err != nil {
		return records, stats, err
	}
	if err := collect("top_rated", nil, func(p int) ([]TMDBMovie, error) { return s.source.TopRated(ctx, p) }); err != nil {
		return records, stats, err
	}
	for _, gid := range plan.GenreIDs {
		s.logger.Info().Int("genre_id", gid).Msg("[Ingest] 开始抓取类型")
		if err := collect("genre", &gid, func(p int) ([]TMDBMovie, error) { return s.source.DiscoverByGenre(ctx, gid, p) }); err != nil {
			return records, stats, err
		}
	}

	s.logger.Info().
		Int("records", len(records)).
		Int("fetched", stats.Fetched).
		Int("tag_degraded", stats.TagDegraded).
		Int("failed_pages", stats.FailedPages).
		Msg("[Ingest] 抓取完成")
	return records, stats, nil
}

// WriteCatalog 写出缩进格式的 JSON 数组
func WriteCatalog(path string, records []model.MovieRecord) error {
	if records == nil {
		records = []model.MovieRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化目录失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入目录文件失败: %w", err)
	}
	return nil
}
