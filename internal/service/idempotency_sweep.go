package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/repository"
)

const (
	// IdempotencyKeyTTL is how long a cart Idempotency-Key can be replayed
	IdempotencyKeyTTL = 24 * time.Hour
	// IdempotencySweepInterval is how often expired keys are deleted
	IdempotencySweepInterval = time.Hour
)

// SweepIdempotencyKeys deletes keys older than ttl once
func SweepIdempotencyKeys(ctx context.Context, keys repository.IdempotencyKeyRepository, ttl time.Duration, logger *zap.Logger) {
	n, err := keys.DeleteOlderThan(ctx, time.Now().Add(-ttl))
	if err != nil {
		logger.Warn("Idempotency key sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		logger.Info("Expired idempotency keys deleted", zap.Int64("count", n))
	}
}

// RunIdempotencySweepLoop sweeps once, then every interval until ctx is done. Call from a goroutine.
func RunIdempotencySweepLoop(ctx context.Context, keys repository.IdempotencyKeyRepository, ttl, interval time.Duration, logger *zap.Logger) {
	SweepIdempotencyKeys(ctx, keys, ttl, logger)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			SweepIdempotencyKeys(ctx, keys, ttl, logger)
		}
	}
}
