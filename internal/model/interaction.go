package model

import (
	"time"
)

// RecommendationLog 推荐日志，标签和片名均以 ", " 拼接存储
type RecommendationLog struct {
	ID                int       `json:"id" db:"id" gorm:"primaryKey"`
	Query             string    `json:"query" db:"query" gorm:"not null"`
	Tags              string    `json:"tags" db:"tags"`
	RecommendedTitles string    `json:"recommended_titles" db:"recommended_titles"`
	CreatedAt         time.Time `json:"created_at" db:"created_at" gorm:"index"`
}

// WatchedMovie 已观看电影，可关联到产生推荐的日志
type WatchedMovie struct {
	ID        int       `json:"id" db:"id" gorm:"primaryKey"`
	Title     string    `json:"title" db:"title" gorm:"not null"`
	WatchedAt time.Time `json:"watched_at" db:"watched_at" gorm:"index"`
	FromLogID *int      `json:"from_log_id" db:"from_log_id"`
	Review    *string   `json:"review,omitempty" db:"review"`
}
