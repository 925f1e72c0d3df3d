package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/moodpick/internal/model"
	"github.com/user/moodpick/internal/service"
	"github.com/user/moodpick/internal/utils"
	"github.com/user/moodpick/internal/vectorstore"
)

// RecommendRequest 推荐请求
type RecommendRequest struct {
	Message string `json:"message" binding:"required,notblank"`
}

// RecommendResponse 推荐结果
type RecommendResponse struct {
	Reply             string     `json:"reply"`
	TagsUsed          model.Tags `json:"tags_used"`
	RecommendedTitles []string   `json:"recommended_titles"`
	LogID             int        `json:"log_id"`
}

// Recommend POST /recommend
func (h *Handler) Recommend(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "message 는 비어 있을 수 없습니다")
		return
	}

	rec, err := h.Recommender.Recommend(c.Request.Context(), req.Message)
	if err != nil {
		_ = c.Error(err)
		switch {
		case errors.Is(err, service.ErrNarrativeUnavailable):
			utils.BadGateway(c, "추천 문구를 생성하지 못했습니다")
		case errors.Is(err, vectorstore.ErrIndexUnavailable):
			utils.ServiceUnavailable(c, "영화 인덱스가 준비되지 않았습니다")
		default:
			utils.InternalServerError(c, "")
		}
		return
	}

	// 未匹配的请求也记录日志，片名为空
	titles := rec.Titles()
	log, err := h.Logs.Create(c.Request.Context(), req.Message, rec.Tags, titles)
	if err != nil {
		_ = c.Error(err)
		h.logger.Error().Err(err).Msg("[Recommend] 保存推荐日志失败")
		utils.InternalServerError(c, "추천 기록을 저장하지 못했습니다")
		return
	}
	h.cache.Delete(cacheKeyLogs)

	utils.Success(c, RecommendResponse{
		Reply:             rec.Reply,
		TagsUsed:          rec.Tags,
		RecommendedTitles: titles,
		LogID:             log.ID,
	})
}

// LookupMovie GET /movies/lookup?title=
func (h *Handler) LookupMovie(c *gin.Context) {
	title := strings.TrimSpace(c.Query("title"))
	if title == "" {
		utils.BadRequest(c, "title 은 비어 있을 수 없습니다")
		return
	}

	detail, err := h.Lookup.LookupAndTag(c.Request.Context(), title)
	if err != nil {
		_ = c.Error(err)
		if errors.Is(err, service.ErrMovieNotFound) {
			utils.NotFound(c, "영화를 찾을 수 없습니다")
			return
		}
		utils.BadGateway(c, "")
		return
	}
	utils.Success(c, detail)
}
