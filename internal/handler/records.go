package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/moodpick/internal/model"
	"github.com/user/moodpick/internal/repository"
	"github.com/user/moodpick/internal/utils"
)

const (
	cacheKeyLogs    = "logs:recent"
	cacheKeyWatched = "watched:list"
)

// WatchedCreateRequest 记录已观看电影
type WatchedCreateRequest struct {
	Title     string `json:"title" binding:"required,notblank"`
	FromLogID *int   `json:"from_log_id"`
}

// ReviewRequest 保存观后感
type ReviewRequest struct {
	MovieID int    `json:"movie_id" binding:"required,min=1"`
	Review  string `json:"review" binding:"required,notblank"`
}

// ReviewResponse 观后感查询结果
type ReviewResponse struct {
	Exists  bool   `json:"exists"`
	Content string `json:"content"`
}

// ListLogs GET /logs，最近 N 条，不分页
func (h *Handler) ListLogs(c *gin.Context) {
	if cached, found := h.cacheGet(cacheKeyLogs); found {
		if logs, ok := cached.([]*model.RecommendationLog); ok {
			utils.Success(c, logs)
			return
		}
	}

	logs, err := h.Logs.ListRecent(c.Request.Context(), h.logsLimit)
	if err != nil {
		_ = c.Error(err)
		utils.InternalServerError(c, "")
		return
	}
	if logs == nil {
		logs = []*model.RecommendationLog{}
	}
	h.cacheSet(cacheKeyLogs, logs)
	utils.Success(c, logs)
}

// CreateWatched POST /watched
func (h *Handler) CreateWatched(c *gin.Context) {
	var req WatchedCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "title 은 비어 있을 수 없습니다")
		return
	}

	m, err := h.Watched.Create(c.Request.Context(), req.Title, req.FromLogID)
	if err != nil {
		_ = c.Error(err)
		utils.InternalServerError(c, "")
		return
	}
	h.cache.Delete(cacheKeyWatched)
	utils.Created(c, m)
}

// ListWatched GET /watched
func (h *Handler) ListWatched(c *gin.Context) {
	if cached, found := h.cacheGet(cacheKeyWatched); found {
		if list, ok := cached.([]*model.WatchedMovie); ok {
			utils.Success(c, list)
			return
		}
	}

	list, err := h.Watched.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		utils.InternalServerError(c, "")
		return
	}
	if list == nil {
		list = []*model.WatchedMovie{}
	}
	h.cacheSet(cacheKeyWatched, list)
	utils.Success(c, list)
}

// GetReview GET /watched/:id/review
func (h *Handler) GetReview(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		utils.BadRequest(c, "잘못된 id 입니다")
		return
	}

	m, err := h.Watched.FindByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		utils.NotFound(c, "")
		return
	}
	if err != nil {
		_ = c.Error(err)
		utils.InternalServerError(c, "")
		return
	}

	resp := ReviewResponse{}
	if m.Review != nil {
		resp.Exists = true
		resp.Content = *m.Review
	}
	utils.Success(c, resp)
}

// SaveReview POST /watched/review
func (h *Handler) SaveReview(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "movie_id 와 review 가 필요합니다")
		return
	}

	err := h.Watched.SaveReview(c.Request.Context(), req.MovieID, req.Review)
	if errors.Is(err, repository.ErrNotFound) {
		utils.NotFound(c, "")
		return
	}
	if err != nil {
		_ = c.Error(err)
		utils.InternalServerError(c, "")
		return
	}
	h.cache.Delete(cacheKeyWatched)
	utils.Success(c, gin.H{"movie_id": req.MovieID})
}
