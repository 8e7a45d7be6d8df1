package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/mailchimp"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/pkg/errors"
)

// MailingList is the part of the Mailchimp API newsletter signups use
type MailingList interface {
	Subscribe(ctx context.Context, email string, mergeFields map[string]string) (*mailchimp.Member, error)
}

type NewsletterService struct {
	list   MailingList
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewNewsletterService creates a newsletter service. repos may be nil when no database is configured.
func NewNewsletterService(list MailingList, repos *repository.Repositories, logger *zap.Logger) *NewsletterService {
	return &NewsletterService{
		list:   list,
		repos:  repos,
		logger: logger,
	}
}

// Subscribe signs email up on Mailchimp and records the signup locally.
// An address already recorded as subscribed is returned without calling
// Mailchimp. A failure to record locally is logged, not returned.
func (s *NewsletterService) Subscribe(ctx context.Context, email, firstName string) (*domain.Subscriber, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Address != strings.TrimSpace(email) {
		return nil, &errors.ErrValidation{
			Message: "invalid email address",
			Fields:  map[string]string{"email": "must be a plain email address"},
		}
	}

	if existing := s.findSubscribed(ctx, addr.Address); existing != nil {
		s.logger.Debug("Newsletter address already subscribed", zap.String("email", existing.Email))
		return existing, nil
	}

	var merge map[string]string
	if firstName = strings.TrimSpace(firstName); firstName != "" {
		merge = map[string]string{"FNAME": firstName}
	}

	member, err := s.list.Subscribe(ctx, addr.Address, merge)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", addr.Address, err)
	}

	sub := &domain.Subscriber{
		Email:  strings.ToLower(addr.Address),
		Status: member.Status,
	}
	if !sub.Status.IsValid() {
		sub.Status = domain.SubscriberStatusPending
	}
	if member.ID != "" {
		id := member.ID
		sub.MailchimpID = &id
	}

	if s.repos != nil && s.repos.Subscriber != nil {
		if err := s.repos.Subscriber.Upsert(ctx, sub); err != nil {
			s.logger.Warn("Failed to record newsletter subscriber", zap.Error(err), zap.String("email", sub.Email))
		}
	}

	s.logger.Info("Newsletter signup", zap.String("email", sub.Email), zap.String("status", string(sub.Status)))
	return sub, nil
}

// findSubscribed returns the stored subscriber for email when it is
// subscribed. Lookup failures only cost a Mailchimp call.
func (s *NewsletterService) findSubscribed(ctx context.Context, email string) *domain.Subscriber {
	if s.repos == nil || s.repos.Subscriber == nil {
		return nil
	}
	sub, err := s.repos.Subscriber.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		var notFound *errors.ErrNotFound
		if !stderrors.As(err, &notFound) {
			s.logger.Warn("Failed to look up newsletter subscriber", zap.Error(err))
		}
		return nil
	}
	if sub.Status != domain.SubscriberStatusSubscribed {
		return nil
	}
	return sub
}
