package repository

import (
	"context"
	"errors"
	"time"

	"github.com/user/moodpick/internal/model"
	"gorm.io/gorm"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

type WatchedMovieRepository struct {
	db *gorm.DB
}

func NewWatchedMovieRepository(db *gorm.DB) *WatchedMovieRepository {
	return &WatchedMovieRepository{db: db}
}

// Create 记录已观看电影
func (r *WatchedMovieRepository) Create(ctx context.Context, title string, fromLogID *int) (*model.WatchedMovie, error) {
	m := &model.WatchedMovie{
		Title:     title,
		WatchedAt: time.Now(),
		FromLogID: fromLogID,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// List 全部已观看电影，最近观看的在前
func (r *WatchedMovieRepository) List(ctx context.Context) ([]*model.WatchedMovie, error) {
	var records []*model.WatchedMovie
	err := r.db.WithContext(ctx).
		Order("watched_at DESC").
		Order("id DESC").
		Find(&records).Error
	return records, err
}

func (r *WatchedMovieRepository) FindByID(ctx context.Context, id int) (*model.WatchedMovie, error) {
	var rec model.WatchedMovie
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// SaveReview 写入或覆盖观后感
func (r *WatchedMovieRepository) SaveReview(ctx context.Context, id int, review string) error {
	result := r.db.WithContext(ctx).
		Model(&model.WatchedMovie{}).
		Where("id = ?", id).
		UpdateColumn("review", review)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
