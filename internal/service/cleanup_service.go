package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// LogPurger 按时间清理推荐日志
type LogPurger interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CleanupService 清理服务
type CleanupService struct {
	logs      LogPurger
	retention time.Duration
	interval  time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewCleanupService 创建清理服务，retentionDays 为 0 时不清理
func NewCleanupService(logs LogPurger, retentionDays int, logger zerolog.Logger) *CleanupService {
	return &CleanupService{
		logs:      logs,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		interval:  24 * time.Hour,
		logger:    logger,
		now:       time.Now,
	}
}

// Start 启动定时清理任务，ctx 结束时退出
func (s *CleanupService) Start(ctx context.Context) {
	if s.retention <= 0 {
		s.logger.Info().Msg("[CleanupService] 日志保留期为 0，跳过清理任务")
		return
	}

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		// 启动时先运行一次
		s.RunOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce 执行一次清理
func (s *CleanupService) RunOnce(ctx context.Context) int64 {
	if s.retention <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.retention)
	affected, err := s.logs.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error().Err(err).Msg("[CleanupService] 清理推荐日志失败")
		return 0
	}
	if affected > 0 {
		s.logger.Info().Int64("deleted", affected).Time("cutoff", cutoff).Msg("[CleanupService] 已清理过期推荐日志")
	}
	return affected
}
