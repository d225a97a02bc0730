package auth

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// CleanupService periodically deletes sessions whose refresh token expired.
type CleanupService struct {
	service  Service
	interval time.Duration
	logger   *zap.Logger
}

func NewCleanupService(service Service, interval time.Duration, logger *zap.Logger) *CleanupService {
	return &CleanupService{
		service:  service,
		interval: interval,
		logger:   logger.Named("session-cleanup"),
	}
}

// Start runs until ctx is cancelled.
func (c *CleanupService) Start(ctx context.Context) {
	c.logger.Info("starting session cleanup", zap.Duration("interval", c.interval))

	c.runCleanup(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.runCleanup(ctx)
		case <-ctx.Done():
			c.logger.Info("stopping session cleanup")
			return
		}
	}
}

func (c *CleanupService) runCleanup(ctx context.Context) {
	start := time.Now()
	n, err := c.service.CleanupExpiredSessions(ctx)
	if err != nil {
		c.logger.Error("session cleanup failed", zap.Error(err))
		return
	}
	c.logger.Info("session cleanup completed",
		zap.Int64("deleted", n),
		zap.Duration("took", time.Since(start)))
}
