package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

type subscriberRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSubscriberRepository creates a new newsletter subscriber repository
func NewSubscriberRepository(db *sql.DB, logger *zap.Logger) *subscriberRepository {
	return &subscriberRepository{
		db:     db,
		logger: logger,
	}
}

func (r *subscriberRepository) GetByEmail(ctx context.Context, email string) (*domain.Subscriber, error) {
	query := `
		SELECT id, email, status, mailchimp_id, created_at, updated_at
		FROM newsletter_subscribers
		WHERE email = $1
	`

	var s domain.Subscriber
	var mailchimpID sql.NullString

	err := r.db.QueryRowContext(ctx, query, normalizeEmail(email)).Scan(
		&s.ID,
		&s.Email,
		&s.Status,
		&mailchimpID,
		&s.CreatedAt,
		&s.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "subscriber", ID: email}
	}
	if err != nil {
		r.logger.Error("Failed to get subscriber", zap.Error(err))
		return nil, err
	}

	if mailchimpID.Valid {
		s.MailchimpID = &mailchimpID.String
	}
	return &s, nil
}

// Upsert inserts the subscriber or updates status and mailchimp id of the existing row for the same email
func (r *subscriberRepository) Upsert(ctx context.Context, s *domain.Subscriber) error {
	query := `
		INSERT INTO newsletter_subscribers (id, email, status, mailchimp_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO UPDATE SET
			status = EXCLUDED.status,
			mailchimp_id = COALESCE(EXCLUDED.mailchimp_id, newsletter_subscribers.mailchimp_id),
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`

	now := time.Now()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	s.Email = normalizeEmail(s.Email)

	err := r.db.QueryRowContext(ctx, query,
		s.ID,
		s.Email,
		s.Status,
		s.MailchimpID,
		s.CreatedAt,
		s.UpdatedAt,
	).Scan(&s.ID, &s.CreatedAt)

	if err != nil {
		r.logger.Error("Failed to upsert subscriber", zap.Error(err), zap.String("email", s.Email))
		return err
	}

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
