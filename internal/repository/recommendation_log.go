package repository

import (
	"context"
	"time"

	"github.com/user/moodpick/internal/model"
	"gorm.io/gorm"
)

type RecommendationLogRepository struct {
	db *gorm.DB
}

func NewRecommendationLogRepository(db *gorm.DB) *RecommendationLogRepository {
	return &RecommendationLogRepository{db: db}
}

// Create 记录一次推荐，标签和片名以 ", " 拼接
func (r *RecommendationLogRepository) Create(ctx context.Context, query string, tags model.Tags, titles []string) (*model.RecommendationLog, error) {
	log := &model.RecommendationLog{
		Query:             query,
		Tags:              tags.Join(),
		RecommendedTitles: model.Tags(titles).Join(),
		CreatedAt:         time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return nil, err
	}
	return log, nil
}

// ListRecent 最近的推荐日志，按时间倒序
func (r *RecommendationLogRepository) ListRecent(ctx context.Context, limit int) ([]*model.RecommendationLog, error) {
	var logs []*model.RecommendationLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// DeleteOlderThan 清理 cutoff 之前的日志
func (r *RecommendationLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&model.RecommendationLog{})
	return result.RowsAffected, result.Error
}
