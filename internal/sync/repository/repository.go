package repository

import (
	"time"

	"newsletterbox-backend/internal/sync/domain"
)

// SyncLogRepository defines the interface for sync attempt persistence
type SyncLogRepository interface {
	Create(entry *domain.SyncLog) (string, error)
	// Update applies a terminal patch to an open entry
	Update(id string, patch domain.SyncLogPatch) error
	// ListRecent returns the newest entries for an account, newest first
	ListRecent(accountID string, limit int) ([]*domain.SyncLog, error)
	// FindOpen returns the newest processing entry started after since,
	// or nil when there is none. This is the advisory overlap guard: it is
	// a read-then-write check, not an atomic claim, so two concurrent
	// invocations can still both observe nil and proceed.
	FindOpen(accountID string, since time.Time) (*domain.SyncLog, error)
}
