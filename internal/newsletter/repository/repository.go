package repository

import "newsletterbox-backend/internal/newsletter/domain"

// NewsletterRepository defines the interface for ingested-message persistence
type NewsletterRepository interface {
	// Save is idempotent per (account, provider message id); re-ingesting
	// an already stored message is not an error.
	Save(entry *domain.Newsletter) error
	ListByAccount(accountID string, limit, offset int) ([]*domain.Newsletter, error)
	ListRecent(limit, offset int) ([]*domain.Newsletter, error)
}
