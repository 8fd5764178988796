package repository

import (
	"time"

	syncdomain "newsletterbox-backend/internal/sync/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// syncLogRepository implements SyncLogRepository interface
type syncLogRepository struct {
	db *gorm.DB
}

// NewSyncLogRepository creates a new instance of syncLogRepository
func NewSyncLogRepository(db *gorm.DB) SyncLogRepository {
	return &syncLogRepository{
		db: db,
	}
}

func (r *syncLogRepository) Create(entry *syncdomain.SyncLog) (string, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	now := time.Now()
	if entry.StartedAt.IsZero() {
		entry.StartedAt = now
	}
	entry.CreatedAt = now
	entry.UpdatedAt = now
	if err := r.db.Create(entry).Error; err != nil {
		return "", err
	}
	return entry.ID, nil
}

func (r *syncLogRepository) Update(id string, patch syncdomain.SyncLogPatch) error {
	updates := map[string]interface{}{
		"status":        patch.Status,
		"message_count": patch.MessageCount,
		"updated_at":    time.Now(),
	}
	if patch.ErrorMessage != "" {
		updates["error_message"] = patch.ErrorMessage
	}
	if patch.Details != "" {
		updates["details"] = patch.Details
	}
	if patch.FinishedAt != nil {
		updates["finished_at"] = patch.FinishedAt
	}
	return r.db.Model(&syncdomain.SyncLog{}).Where("id = ?", id).Updates(updates).Error
}

func (r *syncLogRepository) ListRecent(accountID string, limit int) ([]*syncdomain.SyncLog, error) {
	if limit <= 0 {
		limit = 20
	}
	var logs []*syncdomain.SyncLog
	err := r.db.Where("account_id = ?", accountID).
		Order("started_at desc").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *syncLogRepository) FindOpen(accountID string, since time.Time) (*syncdomain.SyncLog, error) {
	var entry syncdomain.SyncLog
	err := r.db.Where("account_id = ? AND status = ? AND started_at > ?",
		accountID, syncdomain.StatusProcessing, since).
		Order("started_at desc").
		First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}
