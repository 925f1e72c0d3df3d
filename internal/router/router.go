package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/moodpick/internal/handler"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ==================== 推荐 ====================
	r.POST("/recommend", h.Recommend)
	r.GET("/movies/lookup", h.LookupMovie)

	// ==================== 记录 ====================
	r.GET("/logs", h.ListLogs)

	watched := r.Group("/watched")
	{
		watched.POST("", h.CreateWatched)
		watched.GET("", h.ListWatched)
		watched.GET("/:id/review", h.GetReview)
		watched.POST("/review", h.SaveReview)
	}
}
