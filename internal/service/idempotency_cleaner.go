package service

import (
	"context"
	"log/slog"
	"time"
)

// IdempotencyCleaner periodically drops expired replay entries.
type IdempotencyCleaner struct {
	cache    expiredEntryCleaner
	logger   *slog.Logger
	interval time.Duration
}

func NewIdempotencyCleaner(cache expiredEntryCleaner, logger *slog.Logger, interval time.Duration) *IdempotencyCleaner {
	return &IdempotencyCleaner{cache: cache, logger: logger, interval: interval}
}

func (c *IdempotencyCleaner) Start(ctx context.Context) {
	c.logger.Info("idempotency cleaner started", "interval", c.interval)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("idempotency cleaner stopped")
			return
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

func (c *IdempotencyCleaner) sweep(ctx context.Context) {
	n, err := c.cache.CleanExpired(ctx)
	if err != nil {
		c.logger.Error("failed to clean expired idempotency entries", "error", err)
		return
	}
	if n > 0 {
		c.logger.Debug("expired idempotency entries removed", "count", n)
	}
}
