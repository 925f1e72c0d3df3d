package handler

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/user/moodpick/internal/model"
	"github.com/user/moodpick/internal/service"
	"github.com/user/moodpick/internal/utils"
)

// Recommender 推荐流程
type Recommender interface {
	Recommend(ctx context.Context, message string) (*service.Recommendation, error)
}

// MovieLookup 按片名查询
type MovieLookup interface {
	LookupAndTag(ctx context.Context, title string) (*model.MovieDetail, error)
}

// RecommendationLogStore 推荐日志存储
type RecommendationLogStore interface {
	Create(ctx context.Context, query string, tags model.Tags, titles []string) (*model.RecommendationLog, error)
	ListRecent(ctx context.Context, limit int) ([]*model.RecommendationLog, error)
}

// WatchedMovieStore 已观看电影存储
type WatchedMovieStore interface {
	Create(ctx context.Context, title string, fromLogID *int) (*model.WatchedMovie, error)
	List(ctx context.Context) ([]*model.WatchedMovie, error)
	FindByID(ctx context.Context, id int) (*model.WatchedMovie, error)
	SaveReview(ctx context.Context, id int, review string) error
}

// Services 处理器依赖
type Services struct {
	Recommender Recommender
	Lookup      MovieLookup
	Logs        RecommendationLogStore
	Watched     WatchedMovieStore
}

// Handler HTTP 处理器
type Handler struct {
	Services
	logsLimit int
	listTTL   time.Duration
	cache     *cache.Cache
	logger    zerolog.Logger
}

// NewHandler 创建处理器，listTTL 为列表接口的缓存时间，不大于 0 时不缓存
func NewHandler(svc Services, logsLimit int, listTTL time.Duration, logger zerolog.Logger) *Handler {
	registerValidators()
	if logsLimit <= 0 {
		logsLimit = 50
	}
	return &Handler{
		Services:  svc,
		logsLimit: logsLimit,
		listTTL:   listTTL,
		cache:     utils.NewMemoryCache(listTTL, 2*listTTL),
		logger:    logger,
	}
}

func (h *Handler) cacheGet(key string) (interface{}, bool) {
	if h.listTTL <= 0 {
		return nil, false
	}
	return h.cache.Get(key)
}

func (h *Handler) cacheSet(key string, value interface{}) {
	if h.listTTL <= 0 {
		return
	}
	h.cache.Set(key, value, h.listTTL)
}
