package repository

import (
	"context"
	"time"

	"github.com/jafarshop/storefront/internal/domain"
)

// SubscriberRepository defines newsletter subscriber data access methods
type SubscriberRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.Subscriber, error)
	Upsert(ctx context.Context, subscriber *domain.Subscriber) error
}

// IdempotencyKeyRepository defines idempotency key data access methods
type IdempotencyKeyRepository interface {
	GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error)
	Create(ctx context.Context, key *domain.IdempotencyKey) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Repositories aggregates all repositories. It is nil when no database is configured.
type Repositories struct {
	Subscriber     SubscriberRepository
	IdempotencyKey IdempotencyKeyRepository
}
